package sandbox

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

// accessor defines a getter (and optional setter) property on obj.
func (r *Runtime) accessor(obj *goja.Object, name string, get func() any, set func(goja.Value)) {
	getter := r.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(get())
	})
	var setter goja.Value
	if set != nil {
		setter = r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

// throwNamed throws an Error whose name is set, the way DOMException
// reports SecurityError and friends.
func (r *Runtime) throwNamed(name, msg string) {
	obj, err := r.vm.New(r.vm.Get("Error"), r.vm.ToValue(msg))
	if err != nil {
		panic(r.vm.NewTypeError(msg))
	}
	obj.Set("name", name)
	panic(obj)
}

func present(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

func (r *Runtime) installURL() error {
	ctor := r.vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		if len(call.Arguments) == 0 {
			panic(r.vm.NewTypeError("Failed to construct 'URL': 1 argument required"))
		}
		u, err := r.parseURL(call.Argument(0), call.Argument(1))
		if err != nil {
			panic(r.vm.NewTypeError("Failed to construct 'URL': Invalid URL %q", call.Argument(0).String()))
		}
		r.bindURL(call.This, u)
		return nil
	}).(*goja.Object)

	ctor.Set("canParse", func(call goja.FunctionCall) goja.Value {
		_, err := r.parseURL(call.Argument(0), call.Argument(1))
		return r.vm.ToValue(err == nil)
	})
	ctor.Set("parse", func(call goja.FunctionCall) goja.Value {
		if _, err := r.parseURL(call.Argument(0), call.Argument(1)); err != nil {
			return goja.Null()
		}
		obj, err := r.vm.New(ctor, call.Argument(0), call.Argument(1))
		if err != nil {
			return goja.Null()
		}
		return obj
	})
	return r.vm.Set("URL", ctor)
}

func (r *Runtime) parseURL(input, base goja.Value) (*weburl.URL, error) {
	if present(base) {
		return weburl.New(input.String(), base.String())
	}
	return weburl.New(input.String())
}

// bindURL exposes u on obj. The searchParams object is created on first
// access and stays bound to u.
func (r *Runtime) bindURL(obj *goja.Object, u *weburl.URL) {
	str := func(f func() string) func() any {
		return func() any { return f() }
	}
	set := func(f func(string)) func(goja.Value) {
		return func(v goja.Value) { f(v.String()) }
	}

	r.accessor(obj, "href", str(u.Href), func(v goja.Value) {
		if err := u.SetHref(v.String()); err != nil {
			panic(r.vm.NewTypeError("Failed to set 'href': Invalid URL %q", v.String()))
		}
	})
	r.accessor(obj, "origin", str(u.Origin), nil)
	r.accessor(obj, "protocol", str(u.Protocol), set(u.SetProtocol))
	r.accessor(obj, "username", str(u.Username), set(u.SetUsername))
	r.accessor(obj, "password", str(u.Password), set(u.SetPassword))
	r.accessor(obj, "host", str(u.Host), set(u.SetHost))
	r.accessor(obj, "hostname", str(u.Hostname), set(u.SetHostname))
	r.accessor(obj, "port", str(u.Port), set(u.SetPort))
	r.accessor(obj, "pathname", str(u.Pathname), set(u.SetPathname))
	r.accessor(obj, "search", str(u.Search), set(u.SetSearch))
	r.accessor(obj, "hash", str(u.Hash), set(u.SetHash))

	var params *goja.Object
	r.accessor(obj, "searchParams", func() any {
		if params == nil {
			params = r.newSearchParamsObject(u.SearchParams())
		}
		return params
	}, nil)

	href := func(goja.FunctionCall) goja.Value { return r.vm.ToValue(u.Href()) }
	obj.Set("toString", href)
	obj.Set("toJSON", href)
}

func (r *Runtime) installSearchParams() error {
	ctor := r.vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		p, err := r.searchParamsInit(call.Argument(0))
		if err != nil {
			panic(r.vm.NewTypeError("Failed to construct 'URLSearchParams': %s", err))
		}
		r.bindSearchParams(call.This, p)
		return nil
	})
	return r.vm.Set("URLSearchParams", ctor)
}

// newSearchParamsObject creates a URLSearchParams instance over an existing view.
func (r *Runtime) newSearchParamsObject(p *weburl.SearchParams) *goja.Object {
	obj, err := r.vm.New(r.vm.Get("URLSearchParams"))
	if err != nil {
		panic(err)
	}
	r.bindSearchParams(obj, p)
	return obj
}

// searchParamsInit accepts a query string, a sequence of [name, value]
// pairs, another URLSearchParams, or a record of string properties.
func (r *Runtime) searchParamsInit(v goja.Value) (*weburl.SearchParams, error) {
	if !present(v) {
		return weburl.NewSearchParams(""), nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return weburl.NewSearchParams(v.String()), nil
	}
	if p, ok := r.params[obj]; ok {
		return weburl.NewSearchParamsFromPairs(p.Pairs()), nil
	}
	if _, isArray := obj.Export().([]any); isArray {
		var rows [][]string
		if err := r.vm.ExportTo(v, &rows); err != nil {
			return nil, fmt.Errorf("expected a sequence of pairs: %w", err)
		}
		pairs := make([]weburl.Pair, 0, len(rows))
		for _, row := range rows {
			if len(row) != 2 {
				return nil, fmt.Errorf("each query pair must have exactly two elements")
			}
			pairs = append(pairs, weburl.Pair{Name: row[0], Value: row[1]})
		}
		return weburl.NewSearchParamsFromPairs(pairs), nil
	}
	var pairs []weburl.Pair
	for _, k := range obj.Keys() {
		pairs = append(pairs, weburl.Pair{Name: k, Value: obj.Get(k).String()})
	}
	return weburl.NewSearchParamsFromPairs(pairs), nil
}

func (r *Runtime) bindSearchParams(obj *goja.Object, p *weburl.SearchParams) {
	r.params[obj] = p
	need := func(call goja.FunctionCall, n int, method string) {
		if len(call.Arguments) < n {
			panic(r.vm.NewTypeError("Failed to execute '%s' on 'URLSearchParams': %d arguments required", method, n))
		}
	}
	optional := func(call goja.FunctionCall) []string {
		if v := call.Argument(1); !goja.IsUndefined(v) {
			return []string{v.String()}
		}
		return nil
	}

	r.accessor(obj, "size", func() any { return p.Size() }, nil)
	obj.Set("append", func(call goja.FunctionCall) goja.Value {
		need(call, 2, "append")
		p.Append(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	obj.Set("delete", func(call goja.FunctionCall) goja.Value {
		need(call, 1, "delete")
		p.Delete(call.Argument(0).String(), optional(call)...)
		return goja.Undefined()
	})
	obj.Set("get", func(call goja.FunctionCall) goja.Value {
		need(call, 1, "get")
		if v, ok := p.Get(call.Argument(0).String()); ok {
			return r.vm.ToValue(v)
		}
		return goja.Null()
	})
	obj.Set("getAll", func(call goja.FunctionCall) goja.Value {
		need(call, 1, "getAll")
		values := p.GetAll(call.Argument(0).String())
		items := make([]any, len(values))
		for i, v := range values {
			items[i] = v
		}
		return r.vm.NewArray(items...)
	})
	obj.Set("has", func(call goja.FunctionCall) goja.Value {
		need(call, 1, "has")
		return r.vm.ToValue(p.Has(call.Argument(0).String(), optional(call)...))
	})
	obj.Set("set", func(call goja.FunctionCall) goja.Value {
		need(call, 2, "set")
		p.Set(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	obj.Set("sort", func(goja.FunctionCall) goja.Value {
		p.Sort()
		return goja.Undefined()
	})
	obj.Set("toString", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(p.String())
	})
	obj.Set("forEach", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(r.vm.NewTypeError("Failed to execute 'forEach' on 'URLSearchParams': callback is not a function"))
		}
		for name, value := range p.All() {
			if _, err := fn(call.Argument(1), r.vm.ToValue(value), r.vm.ToValue(name), obj); err != nil {
				panic(err)
			}
		}
		return goja.Undefined()
	})

	entries := func(goja.FunctionCall) goja.Value {
		var items []any
		for name, value := range p.All() {
			items = append(items, r.vm.NewArray(name, value))
		}
		return r.iterator(items)
	}
	obj.Set("entries", entries)
	obj.SetSymbol(goja.SymIterator, entries)
	obj.Set("keys", func(goja.FunctionCall) goja.Value {
		var items []any
		for name := range p.All() {
			items = append(items, name)
		}
		return r.iterator(items)
	})
	obj.Set("values", func(goja.FunctionCall) goja.Value {
		var items []any
		for _, value := range p.All() {
			items = append(items, value)
		}
		return r.iterator(items)
	})
}

// iterator returns an array iterator over items.
func (r *Runtime) iterator(items []any) goja.Value {
	arr := r.vm.NewArray(items...)
	values, ok := goja.AssertFunction(arr.Get("values"))
	if !ok {
		return arr
	}
	it, err := values(arr)
	if err != nil {
		panic(err)
	}
	return it
}
