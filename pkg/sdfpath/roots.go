package sdfpath

var (
	absoluteRootNode = &PathNode{typ: Root, isAbsolute: true}
	relativeRootNode = &PathNode{typ: Root, isAbsolute: false}
)

// AbsoluteRootPath is the sentinel "/" path (spec.md §3).
func AbsoluteRootPath() Path { return Path{prim: absoluteRootNode} }

// RelativeRootPath is the sentinel "." path (spec.md §3).
func RelativeRootPath() Path { return Path{prim: relativeRootNode} }

// EmptyPath is the zero Path, denoting absence (spec.md §3: "the empty
// handle denotes absence").
var EmptyPath = Path{}
