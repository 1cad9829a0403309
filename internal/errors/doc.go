// Package errors classifies the error kinds the engine can surface, per the
// error handling design: configuration, snapshot I/O, snapshot corruption,
// rule evaluation, invalid biome transitions, and client disconnects.
//
// # Core Types
//
//   - AppError: a classified error carrying a Kind, a human-readable
//     message with offending-field context, and the wrapped cause.
//
// # Usage
//
// Constructing a classified error:
//
//	return errors.Configuration("websocket_port", "must be in [1024,65535]", nil)
//
// Checking whether a failure should terminate the process:
//
//	if err != nil {
//	    if appErr, ok := errors.As(err); ok && appErr.Fatal() {
//	        fmt.Fprintln(os.Stderr, appErr)
//	        os.Exit(1)
//	    }
//	}
package errors
