package errors

import (
	"testing"
)

func TestValidateComponentID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid rdns", "org.example.App", false},
		{"valid with dash", "org.example.my-app", false},
		{"valid with underscore", "org.example.my_app", false},
		{"valid flat", "firefox", false},
		{"valid numbers", "org.example.App2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"leading dot", ".org.example.App", true},
		{"trailing dot", "org.example.App.", true},
		{"empty segment", "org..App", true},
		{"spaces", "org.example.My App", true},
		{"slash", "org/example/App", true},
		{"control char", "org.example\x01.App", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComponentID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComponentID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidComponentID) {
				t.Errorf("ValidateComponentID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateLocale(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "de", false},
		{"with territory", "pt_BR", false},
		{"with modifier", "sr@latin", false},
		{"with encoding", "de_DE.UTF-8", false},
		{"three letter", "ast", false},
		{"C locale", "C", false},
		{"POSIX locale", "POSIX", false},

		{"empty", "", true},
		{"path traversal", "../de", true},
		{"spaces", "de DE", true},
		{"too short", "d", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocale(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocale(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "share/metainfo/org.example.App.metainfo.xml", false},
		{"valid absolute", "/usr/share/applications/app.desktop", false},
		{"valid filename only", "README.md", false},
		{"valid with dots", "icons/hicolor/48x48/apps/app.png", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}
