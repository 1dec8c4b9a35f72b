package crate

import (
	"bytes"
	"testing"

	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/value"
)

func TestScalarCodecArrayRoundTrip(t *testing.T) {
	it := sdfpath.NewInterner()
	a, err := sdfpath.NewPrimPath(it, true, "A")
	if err != nil {
		t.Fatal(err)
	}
	b, err := sdfpath.NewPrimPath(it, true, "B")
	if err != nil {
		t.Fatal(err)
	}

	tokens := newTokenTable()
	wctx := &writeCtx{tokens: tokens, strings: newTokenTable(), paths: newPathTable(it, tokens)}
	cases := []value.Value{
		value.New(value.NewArray([]bool{true, false, true})),
		value.New(value.NewArray([]int32{1, -2, 3})),
		value.New(value.NewArray([]int64{1 << 40, -2})),
		value.New(value.NewArray([]float32{1.5, -2.5})),
		value.New(value.NewArray([]float64{1.5, -2.5, 0})),
		value.New(value.NewArray([]string{"foo", "bar", "foo"})),
		value.New(value.NewArray([]sdfpath.Path{a, b, a})),
		value.New(value.NewArray([]int32{})),
	}

	for i, want := range cases {
		var buf bytes.Buffer
		if err := encodeScalar(&buf, wctx, want); err != nil {
			t.Fatalf("case %d: encodeScalar: %v", i, err)
		}

		rctx := &readCtx{tokens: wctx.tokens, strings: wctx.strings, paths: wctx.paths}
		got, err := decodeScalar(bytes.NewReader(buf.Bytes()), rctx)
		if err != nil {
			t.Fatalf("case %d: decodeScalar: %v", i, err)
		}
		if !got.Equal(want) {
			t.Errorf("case %d: got %#v, want %#v", i, got.Interface(), want.Interface())
		}
	}
}
