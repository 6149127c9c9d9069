// Package memory provides in-memory store adapters backing the engine's
// persistence ports. All stores are safe for concurrent use and scope every
// key by shop, so records of one tenant are invisible to another. Values are
// copied on the way in and out; callers never share memory with the store.
package memory

import (
	"encoding/json"
	"fmt"
)

// deepCopy clones src into dst through JSON. Store values only hold
// json-representable data, so the round trip is lossless.
func deepCopy(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("copying stored value: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("copying stored value: %w", err)
	}
	return nil
}

func shopKey(shop, id string) string {
	return shop + "/" + id
}
