package handler

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// decoder は Struct のフィールドを型付きの値に変換します。
// 最初に見つかった不正なフィールドを InvalidArgument として保持します。
type decoder struct {
	fields map[string]*structpb.Value
	err    error
}

func newDecoder(req *structpb.Struct) *decoder {
	return &decoder{fields: req.GetFields()}
}

func (d *decoder) Err() error {
	return d.err
}

func (d *decoder) fail(name, format string, args ...any) {
	if d.err != nil {
		return
	}
	d.err = status.Error(codes.InvalidArgument, fmt.Sprintf("%s: %s", name, fmt.Sprintf(format, args...)))
}

func (d *decoder) value(name string) (*structpb.Value, bool) {
	v, ok := d.fields[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func (d *decoder) optString(name string) *string {
	v, ok := d.value(name)
	if !ok {
		return nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		d.fail(name, "must be a string")
		return nil
	}
	value := s.StringValue
	return &value
}

func (d *decoder) str(name string) string {
	if s := d.optString(name); s != nil {
		return *s
	}
	return ""
}

func (d *decoder) required(name string) string {
	s := d.str(name)
	if strings.TrimSpace(s) == "" {
		d.fail(name, "is required")
	}
	return s
}

func (d *decoder) optInt(name string) *int {
	v, ok := d.value(name)
	if !ok {
		return nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		d.fail(name, "must be a number")
		return nil
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		d.fail(name, "must be an integer")
		return nil
	}
	value := int(n.NumberValue)
	return &value
}

func (d *decoder) integer(name string) int {
	if n := d.optInt(name); n != nil {
		return *n
	}
	return 0
}

func (d *decoder) requiredInt(name string) int {
	n := d.optInt(name)
	if n == nil {
		d.fail(name, "is required")
		return 0
	}
	return *n
}

func (d *decoder) optBool(name string) *bool {
	v, ok := d.value(name)
	if !ok {
		return nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		d.fail(name, "must be a boolean")
		return nil
	}
	value := b.BoolValue
	return &value
}

func (d *decoder) boolean(name string) bool {
	if b := d.optBool(name); b != nil {
		return *b
	}
	return false
}

func (d *decoder) optDate(name string) *time.Time {
	raw := d.optString(name)
	if raw == nil {
		return nil
	}
	date, err := calendar.ParseDate(*raw)
	if err != nil {
		d.fail(name, "%v", err)
		return nil
	}
	return &date
}

func (d *decoder) date(name string) time.Time {
	date := d.optDate(name)
	if date == nil {
		d.fail(name, "is required")
		return time.Time{}
	}
	return *date
}

func (d *decoder) timestamp(name string) time.Time {
	raw := d.optString(name)
	if raw == nil {
		d.fail(name, "is required")
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		d.fail(name, "invalid timestamp %q, expected RFC 3339", *raw)
		return time.Time{}
	}
	return t
}

// timeOfDay は HH:MM 形式の時刻を 0 時からの分として読み取ります。
func (d *decoder) timeOfDay(name string) int {
	raw := d.optString(name)
	if raw == nil {
		d.fail(name, "is required")
		return 0
	}
	minute, err := calendar.ParseTimeOfDay(*raw)
	if err != nil {
		d.fail(name, "%v", err)
		return 0
	}
	return minute
}

func (d *decoder) optTimeOfDay(name string) *int {
	if _, ok := d.value(name); !ok {
		return nil
	}
	minute := d.timeOfDay(name)
	return &minute
}
