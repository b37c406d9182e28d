package exercise

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseJSON decodes an exercise document. Each field may be spelled in
// snake_case or camelCase; when both are present and non-null the snake_case
// value wins.
func ParseJSON(data []byte) (*Exercise, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrInvalidJSON, root.Type)
	}
	id := root.Get("id")
	switch {
	case !id.Exists() || id.Type == gjson.Null:
		return nil, ErrMissingID
	case id.Type != gjson.Number:
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id.Raw)
	}
	if err := validateID(id.Int()); err != nil {
		return nil, err
	}

	str := func(keys ...string) string { return pick(root, keys...).String() }
	ex := &Exercise{
		ID:             id.Int(),
		Slug:           str("slug"),
		Title:          str("title"),
		Description:    str("description"),
		StarterCode:    str("starter_code", "starterCode"),
		ExpectedStdout: str("expected_stdout", "expectedStdout"),
		FixedTop:       str("fixed_top", "fixedTop"),
		FixedBottom:    str("fixed_bottom", "fixedBottom"),
		RequiredToken:  str("required_token", "requiredToken"),
		CheckScript:    str("check_script", "checkScript"),
	}
	if v := pick(root, "top_lock_lines", "topLockLines"); v.Type == gjson.Number {
		n := int(v.Int())
		ex.TopLockLines = &n
	}
	if v := pick(root, "bottom_sentinel", "bottomSentinel"); v.Type == gjson.String {
		s := v.Str
		ex.BottomSentinel = &s
	}
	ex.decode()
	return ex, nil
}

// pick returns the first key that holds a non-null value.
func pick(root gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := root.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}
