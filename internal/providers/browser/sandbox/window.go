package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/clone"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

// execution is the per-run binding between a script and a window. Events
// may arrive from any goroutine; they are only queued here and delivered to
// script listeners on the goroutine running the script.
type execution struct {
	ctx        context.Context
	win        *navigation.Window
	listenerID navigation.ListenerID

	mu    sync.Mutex
	queue []navigation.Event

	delivered []navigation.Event
	listeners map[string][]goja.Value

	docID  string
	docObj *goja.Object
	dom    *DOM
}

func newExecution(ctx context.Context, win *navigation.Window) *execution {
	e := &execution{
		ctx:       ctx,
		win:       win,
		listeners: make(map[string][]goja.Value),
	}
	e.listenerID = win.Events().AddListener(navigation.AnyEvent, e.enqueue)
	return e
}

func (e *execution) enqueue(ev navigation.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, ev)
}

func (e *execution) take() []navigation.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	batch := e.queue
	e.queue = nil
	return batch
}

func (e *execution) detach() {
	e.win.Events().RemoveListener(navigation.AnyEvent, e.listenerID)
}

// bindWindow installs location, history, document and event listener
// registration for the current execution.
func (r *Runtime) bindWindow() {
	global := r.vm.GlobalObject()
	loc := r.locationObject()
	hist := r.historyObject()

	r.accessor(global, "location", func() any { return loc }, func(v goja.Value) {
		r.navigated(r.exec.win.Location().Assign(r.exec.ctx, v.String()))
	})
	r.accessor(global, "history", func() any { return hist }, nil)
	r.accessor(global, "document", func() any { return r.documentObject(loc) }, nil)

	global.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		typ, fn := call.Argument(0).String(), call.Argument(1)
		if _, ok := goja.AssertFunction(fn); !ok {
			return goja.Undefined()
		}
		for _, existing := range r.exec.listeners[typ] {
			if existing.SameAs(fn) {
				return goja.Undefined()
			}
		}
		r.exec.listeners[typ] = append(r.exec.listeners[typ], fn)
		return goja.Undefined()
	})
	global.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		typ, fn := call.Argument(0).String(), call.Argument(1)
		list := r.exec.listeners[typ]
		for i, existing := range list {
			if existing.SameAs(fn) {
				r.exec.listeners[typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		return goja.Undefined()
	})
}

// dispatch calls addEventListener listeners, then the on<type> handler.
// Exceptions are logged to the console; an interrupt stops delivery.
func (r *Runtime) dispatch(ev navigation.Event) error {
	global := r.vm.GlobalObject()
	handlers := append([]goja.Value(nil), r.exec.listeners[ev.Type]...)
	if h := global.Get("on" + ev.Type); present(h) {
		handlers = append(handlers, h)
	}
	obj := r.eventObject(ev)
	for _, h := range handlers {
		fn, ok := goja.AssertFunction(h)
		if !ok {
			continue
		}
		if _, err := fn(global, obj); err != nil {
			var interrupted *goja.InterruptedError
			if errors.As(err, &interrupted) {
				return err
			}
			r.log("error", "Uncaught "+err.Error())
		}
	}
	return nil
}

func (r *Runtime) eventObject(ev navigation.Event) *goja.Object {
	obj := r.vm.NewObject()
	obj.Set("type", ev.Type)
	obj.Set("timeStamp", ev.Time.UnixMilli())
	switch ev.Type {
	case navigation.EventPopState:
		obj.Set("state", r.native(ev.State))
	case navigation.EventHashChange:
		obj.Set("oldURL", ev.OldURL)
		obj.Set("newURL", ev.NewURL)
	}
	return obj
}

// navigated turns a navigation error into a script exception where the
// platform throws, and a console warning otherwise.
func (r *Runtime) navigated(err error) {
	if err == nil {
		return
	}
	var pe *weburl.ParseError
	switch {
	case errors.As(err, &pe):
		r.throwNamed("SyntaxError", err.Error())
	case errors.Is(err, navigation.ErrSecurity):
		r.throwNamed("SecurityError", err.Error())
	case errors.Is(err, navigation.ErrDataClone):
		r.throwNamed("DataCloneError", err.Error())
	default:
		r.logger.Debug("Script navigation failed",
			logging.Window(r.exec.win.ID()),
			zap.Error(err))
		r.log("warn", "navigation failed: "+err.Error())
	}
}

func (r *Runtime) locationObject() *goja.Object {
	loc := r.exec.win.Location()
	ctx := r.exec.ctx
	o := r.vm.NewObject()

	str := func(f func() string) func() any {
		return func() any { return f() }
	}
	nav := func(f func(context.Context, string) error) func(goja.Value) {
		return func(v goja.Value) { r.navigated(f(ctx, v.String())) }
	}

	r.accessor(o, "href", str(loc.Href), nav(loc.SetHref))
	r.accessor(o, "origin", str(loc.Origin), nil)
	r.accessor(o, "protocol", str(loc.Protocol), nav(loc.SetProtocol))
	r.accessor(o, "host", str(loc.Host), nav(loc.SetHost))
	r.accessor(o, "hostname", str(loc.Hostname), nav(loc.SetHostname))
	r.accessor(o, "port", str(loc.Port), nav(loc.SetPort))
	r.accessor(o, "pathname", str(loc.Pathname), nav(loc.SetPathname))
	r.accessor(o, "search", str(loc.Search), nav(loc.SetSearch))
	r.accessor(o, "hash", str(loc.Hash), nav(loc.SetHash))

	o.Set("assign", func(call goja.FunctionCall) goja.Value {
		r.navigated(loc.Assign(ctx, call.Argument(0).String()))
		return goja.Undefined()
	})
	o.Set("replace", func(call goja.FunctionCall) goja.Value {
		r.navigated(loc.Replace(ctx, call.Argument(0).String()))
		return goja.Undefined()
	})
	o.Set("reload", func(call goja.FunctionCall) goja.Value {
		r.navigated(loc.Reload(ctx, call.Argument(0).ToBoolean()))
		return goja.Undefined()
	})
	href := func(goja.FunctionCall) goja.Value { return r.vm.ToValue(loc.Href()) }
	o.Set("toString", href)
	o.Set("toJSON", href)
	return o
}

func (r *Runtime) historyObject() *goja.Object {
	h := r.exec.win.History()
	ctx := r.exec.ctx
	o := r.vm.NewObject()

	r.accessor(o, "length", func() any { return h.Length() }, nil)
	r.accessor(o, "state", func() any {
		state, err := h.State()
		if err != nil {
			return goja.Null()
		}
		return r.native(state)
	}, nil)
	r.accessor(o, "scrollRestoration", func() any { return h.ScrollRestoration() }, func(v goja.Value) {
		h.SetScrollRestoration(v.String())
	})

	o.Set("go", func(call goja.FunctionCall) goja.Value {
		r.navigated(h.Go(ctx, int(call.Argument(0).ToInteger())))
		return goja.Undefined()
	})
	o.Set("back", func(goja.FunctionCall) goja.Value {
		r.navigated(h.Back(ctx))
		return goja.Undefined()
	})
	o.Set("forward", func(goja.FunctionCall) goja.Value {
		r.navigated(h.Forward(ctx))
		return goja.Undefined()
	})

	update := func(apply func(any, string, ...string) error, method string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(r.vm.NewTypeError("Failed to execute '%s' on 'History': 2 arguments required", method))
			}
			var url []string
			if u := call.Argument(2); present(u) {
				url = append(url, u.String())
			}
			r.navigated(apply(call.Argument(0).Export(), call.Argument(1).String(), url...))
			return goja.Undefined()
		}
	}
	o.Set("pushState", update(h.PushState, "pushState"))
	o.Set("replaceState", update(h.ReplaceState, "replaceState"))
	return o
}

// documentObject returns the document proxy, rebuilt whenever the window
// has committed a new document.
func (r *Runtime) documentObject(loc *goja.Object) *goja.Object {
	doc := r.exec.win.Controller().Document()
	if r.exec.docObj != nil && r.exec.docID == doc.ID {
		return r.exec.docObj
	}
	o := r.vm.NewObject()
	o.Set("URL", doc.Href())
	o.Set("documentURI", doc.Href())
	o.Set("baseURI", doc.BaseURL.Href())
	o.Set("title", doc.Title)
	o.Set("contentType", doc.ContentType)
	o.Set("location", loc)
	r.exec.docID, r.exec.docObj, r.exec.dom = doc.ID, o, nil

	if !r.config.EnableDOM {
		return o
	}
	dom, err := NewDOM(doc.HTML)
	if err != nil {
		r.log("warn", err.Error())
		return o
	}
	r.exec.dom = dom

	first := func(selector string) goja.Value {
		if els := dom.Query(selector); len(els) > 0 {
			return r.elementObject(els[0])
		}
		return goja.Null()
	}
	o.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return first(call.Argument(0).String())
	})
	o.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return first(fmt.Sprintf("[id=%q]", call.Argument(0).String()))
	})
	o.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		els := dom.Query(call.Argument(0).String())
		items := make([]any, len(els))
		for i, el := range els {
			items[i] = r.elementObject(el)
		}
		return r.vm.NewArray(items...)
	})
	return o
}

func (r *Runtime) elementObject(el *Element) *goja.Object {
	o := r.vm.NewObject()
	o.Set("tagName", el.TagName)
	o.Set("id", el.ID)
	o.Set("className", el.ClassName)
	r.accessor(o, "textContent", func() any { return el.TextContent }, func(v goja.Value) {
		el.SetText(v.String())
	})
	o.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := el.GetAttribute(call.Argument(0).String()); ok {
			return r.vm.ToValue(v)
		}
		return goja.Null()
	})
	o.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		_, ok := el.GetAttribute(call.Argument(0).String())
		return r.vm.ToValue(ok)
	})
	o.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		el.SetAttribute(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	return o
}

// installStructuredClone exposes structuredClone with the same rules as
// history state.
func (r *Runtime) installStructuredClone() {
	r.vm.Set("structuredClone", func(call goja.FunctionCall) goja.Value {
		blob, err := clone.Serialize(call.Argument(0).Export())
		if err != nil {
			r.throwNamed("DataCloneError", err.Error())
		}
		return r.parseJSON(blob)
	})
}

// native converts a decoded state value into plain script objects, so the
// copy a script receives behaves like any other object.
func (r *Runtime) native(v any) goja.Value {
	if v == nil {
		return goja.Null()
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return r.vm.ToValue(v)
	}
	return r.parseJSON(data)
}

func (r *Runtime) parseJSON(data []byte) goja.Value {
	if data == nil {
		return goja.Null()
	}
	parse, ok := goja.AssertFunction(r.vm.Get("JSON").ToObject(r.vm).Get("parse"))
	if !ok {
		return goja.Null()
	}
	out, err := parse(goja.Undefined(), r.vm.ToValue(string(data)))
	if err != nil {
		panic(err)
	}
	return out
}
