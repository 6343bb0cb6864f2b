package postgres

import (
	"database/sql"
	"time"

	"github.com/bytedance/sonic"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func unixToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// jsonText marshals a value for a jsonb column.
func jsonText(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func fromJSONText(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return sonic.Unmarshal(data, dst)
}
