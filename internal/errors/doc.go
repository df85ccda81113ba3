// Package errors provides structured, actionable error messages for vdiff.
//
// Every error carries a registered code that maps to a short message, a
// longer explanation and a documentation link. Snapshot errors also name the
// document they were found in.
//
// # Error Categories
//
//   - config: configuration file and value errors (E1xx)
//   - snapshot: snapshot document errors (E2xx)
//   - store: snapshot store errors (E3xx)
//   - protocol, server: wire and service errors (E4xx)
//   - cli: command line errors (E5xx)
//
// # Usage
//
//	err := errors.New("E203").
//	    WithDetail(`children[0].attrs[0]: handler "save" is not registered`).
//	    In("trees/page.yaml").
//	    WithSuggestion(`Register the handler with reg.Register("save", cb)`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E203: Unknown handler reference
//	//
//	//   In: trees/page.yaml
//	//
//	//   children[0].attrs[0]: handler "save" is not registered
//	//
//	//   Hint: Register the handler with reg.Register("save", cb)
package errors
