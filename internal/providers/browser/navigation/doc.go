/*
Package navigation reconciles URL changes requested through Location and the
History API against a browsing context's session history.

A request is classified as a same-document navigation (fragment change,
pushState, replaceState, traversal to an entry of the live document) or a
full navigation. Same-document navigations complete synchronously and never
touch the network. Full navigations hand off to a Loader and commit history
only once the load succeeds; a newer full navigation supersedes an in-flight
one.

A top-level Window owns the joint session history. Nested windows record
their entries in it, and a traversal moves every context whose entry changes.

Events (hashchange, popstate, load) are dispatched after the controller's
lock is released, hashchange before popstate within one traversal.
*/
package navigation
