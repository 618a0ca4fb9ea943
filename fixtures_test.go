package formjson_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tomasbasham/formjson"
)

type Signup struct {
	Name    string   `form:"name"`
	Age     int      `form:"age,omitempty"`
	Tags    []string `form:"tags"`
	Address Address  `form:"address"`
	Joined  *MyDate  `form:"joined,omitempty"`
	Secret  string   `form:"-"`
	Skipped string   `form:",ignore"`
	NoTag   string
	hidden  string
}

type Address struct {
	Street string `form:"street"`
	City   string `form:"city"`
}

type MyDate time.Time

func (d MyDate) MarshalForm() (string, error) {
	return time.Time(d).Format("2006-01-02"), nil
}

func (d *MyDate) UnmarshalForm(s string) error {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = MyDate(t)
	return nil
}

// values builds Values from alternating keys and values, preserving order and
// accumulating repeated keys.
func values(kv ...any) *formjson.Values {
	v := formjson.NewValues()
	for i := 0; i < len(kv); i += 2 {
		v.Add(kv[i].(string), kv[i+1])
	}
	return v
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}
