package engine

import (
	"errors"
	"io"

	"github.com/reoring/jsonish/value"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrBadNumber is returned when a number token cannot be represented.
var ErrBadNumber = errors.New("engine: invalid number literal")

// DecodeValue builds a value.Value from the next complete value in src.
// Object keys keep their order and duplicates are retained.
func DecodeValue(src TokenSource) (value.Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok)
}

func decodeValue(src TokenSource, tok Token) (value.Value, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return value.NewString(tok.String), nil
	case KindNumber:
		n, ok := value.ParseNumber(tok.Number)
		if !ok {
			return nil, ErrBadNumber
		}
		return n, nil
	case KindBool:
		return value.NewBool(tok.Bool), nil
	case KindNull:
		return value.NewNull(), nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (value.Value, error) {
	obj := &value.Object{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndObject {
			return obj, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, value.E(tok.String, v))
	}
}

func decodeArray(src TokenSource) (value.Value, error) {
	arr := &value.Array{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, v)
	}
}

// unexpected maps a clean EOF inside a container to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
