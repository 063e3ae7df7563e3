package query

import (
	"fmt"
	"net/http"
	"strconv"
)

func Int(r *http.Request, key string) (val int, present bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be integer", key)
	}
	return n, true, nil
}

// PositiveInt returns def when key is absent and rejects values below 1.
func PositiveInt(r *http.Request, key string, def int) (int, error) {
	v, present, err := Int(r, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return def, nil
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return v, nil
}
