package client

import (
	"encoding/json"
	"fmt"
)

// BundleList tracks the products a shopper has picked for a build-your-own
// snack bundle. Purely local; nothing is sent to the API until the bundle is
// added to the cart as individual items.
type BundleList struct {
	kv KV
}

func newBundleList(kv KV) *BundleList {
	return &BundleList{kv: kv}
}

func (b *BundleList) load() []Item {
	raw, ok := b.kv.Get(keyBundle)
	if !ok {
		return nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

func (b *BundleList) save(items []Item) {
	if data, err := json.Marshal(items); err == nil {
		b.kv.Set(keyBundle, string(data))
	}
}

// Add puts a product in the bundle selection, merging quantity when it is
// already picked.
func (b *BundleList) Add(item Item) error {
	if item.ProductID == "" {
		return fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	items := b.load()
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			b.save(items)
			return nil
		}
	}
	b.save(append(items, item))
	return nil
}

// Remove drops a product from the selection. Removing an absent product is a
// no-op.
func (b *BundleList) Remove(productID string) {
	items := b.load()
	for i := range items {
		if items[i].ProductID == productID {
			b.save(append(items[:i], items[i+1:]...))
			return
		}
	}
}

func (b *BundleList) Items() []Item {
	return b.load()
}

func (b *BundleList) Clear() {
	b.kv.Delete(keyBundle)
}
