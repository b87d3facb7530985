package permissions

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// flag sets are persisted as text[] of names so a reordering of the bit
// constants never changes stored data.

func namesOf(bits uint32, names []string) []string {
	result := make([]string, 0, len(names))

	for i, name := range names {
		if bits&(1<<i) != 0 {
			result = append(result, name)
		}
	}

	return result
}

func bitsOf(values []string, names []string, strict bool) (uint32, error) {
	var bits uint32

	for _, value := range values {
		found := false

		for i, name := range names {
			if name == value {
				bits |= 1 << i
				found = true
				break
			}
		}

		if !found && strict {
			return 0, fmt.Errorf("unknown permission %q", value)
		}
	}

	return bits, nil
}

func marshalBits(bits uint32, names []string) ([]byte, error) {
	return json.Marshal(namesOf(bits, names))
}

func unmarshalBits(data []byte, names []string) (uint32, error) {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return 0, err
	}

	return bitsOf(values, names, true)
}

func valueOf(bits uint32, names []string) (driver.Value, error) {
	return pq.StringArray(namesOf(bits, names)).Value()
}

// unknown names in the database are dropped rather than failing the whole row
func scanBits(src any, names []string) (uint32, error) {
	var values pq.StringArray
	if err := values.Scan(src); err != nil {
		return 0, fmt.Errorf("failed to scan permissions: %w", err)
	}

	return bitsOf(values, names, false)
}
