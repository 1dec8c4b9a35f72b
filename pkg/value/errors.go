package value

import "github.com/edirooss/scenecore/internal/diag"

func newTypeMismatch(held, want string) *diag.Error {
	if held == "" {
		held = "<empty>"
	}
	return diag.Newf(diag.TypeMismatch, "value holds %s, not %s", held, want).
		With("held", held).With("want", want)
}

func newArrayLengthMismatch(la, lb int) *diag.Error {
	return diag.Newf(diag.CodingError, "array operands have different lengths: %d vs %d", la, lb).
		With("lenA", la).With("lenB", lb)
}
