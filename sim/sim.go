// Package sim implements the local simulation of the lending backend:
// equipment catalog, request lifecycle and one-time-code auth, all persisted
// as JSON blobs in a key-value store. It mirrors the response shapes of the
// HTTP service so the transport shim can swap one for the other.
package sim

import (
	"encoding/json"
	"fmt"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/store"
)

func readBlob(kv store.KV, key string, out any) (bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %v", models.ErrStorage, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", models.ErrStorage, key, err)
	}
	return true, nil
}

func writeBlob(kv store.KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", models.ErrStorage, key, err)
	}
	if err := kv.Set(key, raw); err != nil {
		return fmt.Errorf("%w: set %s: %v", models.ErrStorage, key, err)
	}
	return nil
}

func loadEquipments(kv store.KV) ([]models.Equipment, error) {
	var out []models.Equipment
	if _, err := readBlob(kv, store.KeyEquipments, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func loadRequests(kv store.KV) ([]models.Request, error) {
	var out []models.Request
	if _, err := readBlob(kv, store.KeyRequests, &out); err != nil {
		return nil, err
	}
	return out, nil
}
