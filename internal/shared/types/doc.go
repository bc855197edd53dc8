// Package types provides shared data structures for the navigator service.
//
// Core Types:
//   - Service, Tool, Parameter: provider definitions exposed by the registry
//   - Context: execution context (target window, request id)
//   - Result: standard tool result, built with Success and Failure
//
// Request Types:
//   - ExecuteRequest: service tool execution
//   - OpenWindowRequest, NavigateRequest, TraverseRequest, StateRequest,
//     ScriptRequest: window API bodies
//   - WSMessage: event stream frames
package types
