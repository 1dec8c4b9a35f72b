package value

// Integer is the constraint for element types supporting modulo (spec.md
// §4.4: "per-element arithmetic operators [...] modulo").
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is the constraint for floating-point element types.
type Float interface {
	~float32 | ~float64
}

// Number is the constraint shared by Add/Sub/Mul/Div/Neg.
type Number interface {
	Integer | Float
}

// Go has no operator overloading, so spec.md §4.4's "per-element arithmetic
// operators [...] defined against scalars and against other arrays of equal
// length" are exposed as free functions rather than methods on Array[T].

// AddScalar returns a new array with s added to every element.
func AddScalar[T Number](a Array[T], s T) Array[T] { return mapScalar(a, func(x T) T { return x + s }) }

// SubScalar returns a new array with s subtracted from every element.
func SubScalar[T Number](a Array[T], s T) Array[T] { return mapScalar(a, func(x T) T { return x - s }) }

// MulScalar returns a new array with every element multiplied by s.
func MulScalar[T Number](a Array[T], s T) Array[T] { return mapScalar(a, func(x T) T { return x * s }) }

// DivScalar returns a new array with every element divided by s.
func DivScalar[T Number](a Array[T], s T) Array[T] { return mapScalar(a, func(x T) T { return x / s }) }

// ModScalar returns a new array with every element reduced modulo s.
func ModScalar[T Integer](a Array[T], s T) Array[T] { return mapScalar(a, func(x T) T { return x % s }) }

// Neg returns a new array holding the unary negation of every element.
func Neg[T Number](a Array[T]) Array[T] { return mapScalar(a, func(x T) T { return -x }) }

func mapScalar[T Number](a Array[T], f func(T) T) Array[T] {
	out := make([]T, a.Len())
	for i := 0; i < a.Len(); i++ {
		out[i] = f(a.At(i))
	}
	return NewArray(out)
}

// AddArrays, SubArrays, MulArrays, DivArrays, and ModArrays apply their
// operator elementwise between two equal-length arrays (spec.md §4.4:
// "against other arrays of equal length"). A length mismatch is an API
// misuse, reported as a CodingError with an empty result.
func AddArrays[T Number](a, b Array[T]) (Array[T], error) {
	return zipArrays(a, b, func(x, y T) T { return x + y })
}

func SubArrays[T Number](a, b Array[T]) (Array[T], error) {
	return zipArrays(a, b, func(x, y T) T { return x - y })
}

func MulArrays[T Number](a, b Array[T]) (Array[T], error) {
	return zipArrays(a, b, func(x, y T) T { return x * y })
}

func DivArrays[T Number](a, b Array[T]) (Array[T], error) {
	return zipArrays(a, b, func(x, y T) T { return x / y })
}

func ModArrays[T Integer](a, b Array[T]) (Array[T], error) {
	return zipArrays(a, b, func(x, y T) T { return x % y })
}

func zipArrays[T any](a, b Array[T], f func(x, y T) T) (Array[T], error) {
	if a.Len() != b.Len() {
		return Array[T]{}, newArrayLengthMismatch(a.Len(), b.Len())
	}
	out := make([]T, a.Len())
	for i := range out {
		out[i] = f(a.At(i), b.At(i))
	}
	return NewArray(out), nil
}
