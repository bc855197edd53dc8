/*
Package history implements the joint session history of a top-level
browsing context: an ordered list of entries and a cursor.

Pushing truncates every entry after the cursor before appending. Traversal
targets outside the list are reported as not found so callers can treat
them as no-ops. A Session is safe for concurrent use.
*/
package history
