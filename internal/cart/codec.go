package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-pricing/pkg/money"
	"github.com/spf13/cast"
)

// ErrCorruptBlob marks a persisted cart that could not be decoded.
var ErrCorruptBlob = errors.New("cart: corrupt blob")

type wireItem struct {
	Kind       string `json:"type"`
	SKU        string `json:"sku"`
	Quantity   any    `json:"quantity"`
	BundleName string `json:"bundleName"`
	ItemCount  any    `json:"itemCount"`
	TotalPrice any    `json:"totalPrice"`
}

// Encode serialises the cart as a JSON array of line items.
func Encode(c Cart) ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// Decode parses a persisted cart. Both a bare array and an {"items": [...]} document
// are accepted; an empty blob is an empty cart. Anything undecodable returns an empty
// cart together with ErrCorruptBlob.
func Decode(blob []byte) (Cart, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Cart{}, nil
	}

	var wire []wireItem
	switch trimmed[0] {
	case '[':
		if err := unmarshalNumbers(trimmed, &wire); err != nil {
			return Cart{}, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
	case '{':
		var doc struct {
			Items []wireItem `json:"items"`
		}
		if err := unmarshalNumbers(trimmed, &doc); err != nil {
			return Cart{}, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
		wire = doc.Items
	default:
		return Cart{}, fmt.Errorf("%w: unexpected leading %q", ErrCorruptBlob, trimmed[0])
	}

	out := Cart{Items: make([]LineItem, 0, len(wire))}
	for i, w := range wire {
		item, err := w.lineItem()
		if err != nil {
			return Cart{}, fmt.Errorf("%w: item %d: %v", ErrCorruptBlob, i, err)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (w wireItem) lineItem() (LineItem, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(w.Kind)))
	if kind == "" {
		kind = KindProduct
		if strings.TrimSpace(w.BundleName) != "" {
			kind = KindBundle
		}
	}

	switch kind {
	case KindProduct:
		qty, err := toInt(w.Quantity)
		if err != nil {
			return LineItem{}, fmt.Errorf("quantity: %w", err)
		}
		return Product(w.SKU, qty), nil
	case KindBundle:
		count, err := toInt(w.ItemCount)
		if err != nil {
			return LineItem{}, fmt.Errorf("itemCount: %w", err)
		}
		total, err := money.ParseOptional(w.TotalPrice)
		if err != nil {
			return LineItem{}, fmt.Errorf("totalPrice: %w", err)
		}
		return Bundle(w.BundleName, count, total), nil
	default:
		return LineItem{}, fmt.Errorf("unknown item type %q", w.Kind)
	}
}

// toInt reads a persisted count. Strings are decimal only, so "010" is ten.
func toInt(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case json.Number:
		return strconv.Atoi(strings.TrimSpace(v.String()))
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return cast.ToIntE(v)
	}
}
