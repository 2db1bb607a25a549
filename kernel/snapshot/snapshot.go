// Package snapshot exports kernel state in a canonical textual form
// (key-sorted, whitespace-free JSON) so identical state always hashes to the
// same digest, and frames that form onto a kernel.BlockDevice.
package snapshot

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"github.com/inference-sim/detkernel/kernel"
)

// Snapshot is the state of one simulation at one tick.
type Snapshot struct {
	Tick    int64                   `json:"tick"`
	Nodes   []kernel.NodeDescriptor `json:"nodes"`
	Sensors map[string]float64      `json:"sensors"`
	Ring    map[string]string       `json:"ring,omitempty"`
	Star    []kernel.StarEdge       `json:"star,omitempty"`
	Faults  map[string]int          `json:"faults,omitempty"` // domain → faults classified so far
}

// Canonical returns the canonical encoding: JSON with every object's keys
// sorted and no insignificant whitespace. NaN and ±Inf sensor values cannot be
// encoded and return an error.
func (s *Snapshot) Canonical() ([]byte, error) {
	return Canonicalize(s)
}

// Digest returns the hex blake2b-256 digest of the canonical encoding.
func (s *Snapshot) Digest() (string, error) {
	data, err := s.Canonical()
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}

// ErrInvalidUTF8 reports a string that JSON would silently rewrite to U+FFFD,
// which would let distinct states share one encoding.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Canonicalize encodes any JSON-marshalable value canonically. Strings and
// map keys must be valid UTF-8.
func Canonicalize(v any) ([]byte, error) {
	if err := checkUTF8(reflect.ValueOf(v), "$"); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	// Round-trip through a generic value so struct fields are key-sorted too;
	// UseNumber keeps numeric text exactly as first encoded.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonicalizing snapshot: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("canonicalizing snapshot: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// checkUTF8 walks v the way encoding/json would and fails on the first
// string, or string map key, that is not valid UTF-8.
func checkUTF8(v reflect.Value, path string) error {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkUTF8(v.Elem(), path)
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return fmt.Errorf("%w at %s: %q", ErrInvalidUTF8, path, v.String())
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := checkUTF8(v.Field(i), path+"."+t.Field(i).Name); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil // base64 encoded
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkUTF8(v.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key()
			if k.Kind() == reflect.String && !utf8.ValidString(k.String()) {
				return fmt.Errorf("%w in key at %s: %q", ErrInvalidUTF8, path, k.String())
			}
			if err := checkUTF8(iter.Value(), fmt.Sprintf("%s[%v]", path, k)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Digest returns the hex blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Decode parses a canonical (or any JSON) encoding back into a Snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}
