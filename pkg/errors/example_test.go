// Package errors provides examples of structured error handling on the write path.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeConversion, "cannot append String to Int32Builder").
		WithDetail("source", "String").
		WithDetail("target", "Int32Builder")

	fmt.Println(err.Error())

	// Output:
	// conversion: cannot append String to Int32Builder
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeData, "failed to read arrow stream").
		WithDetail("batch_id", 7)

	if errors.IsType(err, errors.ErrorTypeData) {
		fmt.Println("This is a data error")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Cause was unexpected EOF")
	}

	// Output:
	// This is a data error
	// Cause was unexpected EOF
}

// ExampleIsType demonstrates that IsType inspects the outermost structured error.
func ExampleIsType() {
	stateErr := errors.New(errors.ErrorTypeState, "build called before close")
	wrapped := errors.Wrap(stateErr, errors.ErrorTypeInternal, "flush failed")

	fmt.Printf("Is state error: %v\n", errors.IsType(stateErr, errors.ErrorTypeState))
	fmt.Printf("Wrapped is internal: %v\n", errors.IsType(wrapped, errors.ErrorTypeInternal))
	fmt.Printf("Wrapped is state: %v\n", errors.IsType(wrapped, errors.ErrorTypeState))

	// Output:
	// Is state error: true
	// Wrapped is internal: true
	// Wrapped is state: false
}

// ExampleDetail shows how callers read structured details back out.
func ExampleDetail() {
	err := errors.Newf(errors.ErrorTypeValidation, "position %d out of range [0, %d)", 5, 2).
		WithDetail("pos", 5)

	pos, ok := errors.Detail(err, "pos")
	fmt.Println(err, pos, ok)

	// Output:
	// validation: position 5 out of range [0, 2) 5 true
}
