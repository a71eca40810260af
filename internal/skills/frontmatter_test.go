package skills

import "testing"

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantName string
		wantBody string
		wantErr  bool
	}{
		{
			name:     "standard",
			content:  "---\nname: x\npriority: 5\n---\n# Body\n",
			wantName: "x",
			wantBody: "# Body\n",
		},
		{
			name:     "crlf line endings",
			content:  "---\r\nname: y\r\n---\r\nbody",
			wantName: "y",
			wantBody: "body",
		},
		{
			name:     "no frontmatter",
			content:  "# Just markdown",
			wantBody: "# Just markdown",
		},
		{
			name:     "empty frontmatter",
			content:  "---\n---\nbody",
			wantBody: "body",
		},
		{
			name:    "unterminated",
			content: "---\nname: z\nbody without end",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: "---\nname: [x\n---\nbody",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := parseFrontmatter(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fm.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", fm.Name, tt.wantName)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
