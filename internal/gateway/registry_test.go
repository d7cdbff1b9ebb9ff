package gateway

import "testing"

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path          string
		wantService   string
		wantRemainder string
	}{
		{"/auth/register", "auth", "/register"},
		{"/auth/users/42/profile", "auth", "/users/42/profile"},
		{"/auth", "auth", "/"},
		{"/auth/", "auth", "/"},
		{"/", "", "/"},
		{"", "", "/"},
	}

	for _, tt := range tests {
		service, remainder := SplitPath(tt.path)
		if service != tt.wantService || remainder != tt.wantRemainder {
			t.Errorf("SplitPath(%q) = (%q, %q), want (%q, %q)",
				tt.path, service, remainder, tt.wantService, tt.wantRemainder)
		}
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(map[string]string{
		"auth":    "http://auth:8001/auth",
		"billing": "http://billing:8002/api/billing/",
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	base, ok := reg.Resolve("auth")
	if !ok {
		t.Fatal("auth not resolvable")
	}
	if base.Path != "/auth" {
		t.Errorf("auth mount path = %q, want /auth", base.Path)
	}

	base, ok = reg.Resolve("billing")
	if !ok {
		t.Fatal("billing not resolvable")
	}
	if base.Path != "/api/billing" {
		t.Errorf("billing mount path = %q, trailing slash should be trimmed", base.Path)
	}

	if _, ok := reg.Resolve("unknown"); ok {
		t.Error("unknown service resolved")
	}
}

func TestNewRegistryRejectsBadTargets(t *testing.T) {
	for _, raw := range []string{"auth:8001", "/just/a/path", "://nope"} {
		if _, err := NewRegistry(map[string]string{"auth": raw}); err == nil {
			t.Errorf("NewRegistry accepted %q", raw)
		}
	}
}
