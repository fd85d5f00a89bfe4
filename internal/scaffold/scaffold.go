package scaffold

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/corsfs/internal/config"
)

const defaultYaml = `# corsfs configuration
port: 3000
# host: "127.0.0.1"     # empty binds all interfaces
rootDir: "."
startPage: "homepage.html"
openBrowser: true

# Optional features
liveReload: false
compress: false
etag: false
maxConnections: 0
`

const homepage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>corsfs</title>
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <h1>It works</h1>
  <p id="status">Loading script...</p>
  <script src="app.js"></script>
</body>
</html>
`

const stylesheet = `body {
  font-family: system-ui, sans-serif;
  margin: 2rem auto;
  max-width: 40rem;
}
`

const script = `document.getElementById('status').textContent = 'Script loaded.';
`

// starterFiles in creation order.
var starterFiles = []struct {
	name    string
	content string
}{
	{config.DefaultFile, defaultYaml},
	{"homepage.html", homepage},
	{"style.css", stylesheet},
	{"app.js", script},
}

// Run writes a starter site into dir. Existing files are left alone.
func Run(fs afero.Fs, dir string, out io.Writer) error {
	_, _ = fmt.Fprintln(out, "🌱 Initializing new site...")

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	for _, f := range starterFiles {
		path := filepath.Join(dir, f.name)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return err
		}
		if exists {
			_, _ = fmt.Fprintf(out, "   ⚠️ '%s' already exists, skipping.\n", path)
			continue
		}
		if err := afero.WriteFile(fs, path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(out, "   📄 Created '%s'\n", path)
	}

	_, _ = fmt.Fprintln(out, "\n✅ Site initialized successfully!")
	_, _ = fmt.Fprintln(out, "   👉 Run 'corsfs serve' to open it.")
	return nil
}
