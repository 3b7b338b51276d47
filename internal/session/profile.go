package session

import (
	"encoding/json"
	"strings"

	"github.com/and161185/attendance-client/internal/model"
)

// Profile is the loosely typed identity blob persisted under storage.KeyUser.
type Profile map[string]any

// profileSource extracts a candidate profile from an identity response.
type profileSource func(res model.AuthPayload) (map[string]any, bool)

// profileSources are tried in order; the first hit wins.
var profileSources = []profileSource{
	nested("user"),
	nested("userInfo"),
	nested("profile"),
	topLevel,
}

func nested(key string) profileSource {
	return func(res model.AuthPayload) (map[string]any, bool) {
		m, ok := res[key].(map[string]any)
		return m, ok
	}
}

// topLevel treats the response itself as the profile when it carries an identity field.
func topLevel(res model.AuthPayload) (map[string]any, bool) {
	for _, k := range []string{"user_id", "userId", "id", "email"} {
		if truthy(res[k]) {
			return res, true
		}
	}
	return nil, false
}

// resolveProfile picks the profile from res, drops credential fields and
// mirrors the top-level role when the payload has none.
func resolveProfile(res model.AuthPayload) (Profile, bool) {
	var payload map[string]any
	for _, src := range profileSources {
		if m, ok := src(res); ok {
			payload = m
			break
		}
	}
	if payload == nil {
		return nil, false
	}

	out := make(Profile, len(payload)+1)
	for k, v := range payload {
		if k == "accessToken" || k == "role" {
			continue
		}
		out[k] = v
	}
	if role, ok := payload["role"]; ok && role != nil {
		out["role"] = role
	} else if role, ok := res["role"]; ok && role != nil {
		out["role"] = role
	}
	return out, true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// Identity is the role and ids a view needs to pick its data source.
type Identity struct {
	Role         string
	UserID       string
	InstructorID string
	StudentID    string
}

// Identity resolves ids from the profile. Role falls back to fallbackRole,
// then to student, and is lower-cased.
func (p Profile) Identity(fallbackRole string) Identity {
	role := p.String("role")
	if role == "" {
		role = fallbackRole
	}
	if role == "" {
		role = model.RoleStudent
	}
	userID := p.first("id", "user_id", "userId")
	return Identity{
		Role:         strings.ToLower(role),
		UserID:       userID,
		InstructorID: firstNonEmpty(p.first("instructor_id", "instructorId"), userID),
		StudentID:    firstNonEmpty(p.first("student_id", "studentId"), userID),
	}
}

// String returns the field as text; numbers keep their JSON spelling.
func (p Profile) String(key string) string {
	switch x := p[key].(type) {
	case string:
		return x
	case json.Number:
		if truthy(x) {
			return x.String()
		}
	case float64:
		if x != 0 {
			b, _ := json.Marshal(x)
			return string(b)
		}
	}
	return ""
}

func (p Profile) first(keys ...string) string {
	for _, k := range keys {
		if v := p.String(k); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
