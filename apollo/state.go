// Package apollo locates and normalizes the Apollo transfer state that
// HiBid embeds in its server-rendered pages. The state is a normalized
// object graph: top-level keys are opaque entity references and field
// values may point back into the graph via {"__ref": key} objects.
package apollo

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/auctiondir/hibid"
)

const (
	// stateScriptID identifies the SSR script element carrying the state.
	stateScriptID = "hibid-state"

	// stateKey is the key inside the script's JSON document that holds
	// the serialized Apollo cache.
	stateKey = "apollo.state"
)

// State is the parsed Apollo object graph. It keeps the document order
// of the top-level keys so records can be emitted deterministically in
// first-encountered order. The mapping is immutable after parsing;
// reference resolution is pure lookup, never a live pointer graph.
type State struct {
	entities map[string]any
	order    []string
}

// Locate finds the embedded state script in an HTML document and parses
// it. Absence of the script element or of the state key is an expected
// case and reported as ENOTFOUND; a script that is present but carries
// malformed JSON is a fault and reported as EPARSE.
func Locate(html string) (*State, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, hibid.Errorf(hibid.EPARSE, "parse html: %v", err)
	}

	sel := doc.Find("script#" + stateScriptID)
	if sel.Length() == 0 {
		return nil, hibid.Errorf(hibid.ENOTFOUND, "state script not present")
	}

	raw := strings.TrimSpace(sel.First().Text())
	if raw == "" {
		return nil, hibid.Errorf(hibid.ENOTFOUND, "state script is empty")
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &outer); err != nil {
		return nil, hibid.Errorf(hibid.EPARSE, "malformed state document: %v", err)
	}

	rawState, ok := outer[stateKey]
	if !ok {
		return nil, hibid.Errorf(hibid.ENOTFOUND, "state document has no %q entry", stateKey)
	}

	return parseState(rawState)
}

func parseState(raw []byte) (*State, error) {
	var entities map[string]any
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, hibid.Errorf(hibid.EPARSE, "malformed state graph: %v", err)
	}

	order, err := topLevelKeyOrder(raw)
	if err != nil {
		return nil, hibid.Errorf(hibid.EPARSE, "scan state graph keys: %v", err)
	}

	return &State{entities: entities, order: order}, nil
}

// Keys returns the top-level entity keys in document order.
func (s *State) Keys() []string {
	return s.order
}

// Entity returns the object stored under a top-level key.
func (s *State) Entity(key string) (map[string]any, bool) {
	m, ok := s.entities[key].(map[string]any)
	return m, ok
}

// topLevelKeyOrder scans the raw JSON object and records its key order.
// json.Unmarshal into a map loses ordering, so the order is recovered
// with a token scan that skips nested values.
func topLevelKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, hibid.Errorf(hibid.EPARSE, "state graph is not a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, hibid.Errorf(hibid.EPARSE, "unexpected token in state graph")
		}
		keys = append(keys, key)

		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// skipValue consumes one JSON value from the decoder.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
