package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<h1>Monitors</h1>
<ul class="monitor" id="bestbuy">
  <li data-category="GPUs">Graphics cards</li>
  <li data-category="Consoles">Game consoles</li>
</ul>
<ul class="monitor" id="newegg">
  <li data-category="GPUs">Graphics cards</li>
  <li data-category="">  Trading
      Cards </li>
</ul>
</body></html>`

func TestParseHTML(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     []string
	}{
		{
			name:     "default selector prefers attribute over text",
			selector: "",
			want:     []string{"GPUs", "Consoles", "GPUs", "Trading Cards"},
		},
		{
			name:     "custom selector",
			selector: "#bestbuy li",
			want:     []string{"GPUs", "Consoles"},
		},
		{
			name:     "selector without matches",
			selector: "table td",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHTML(strings.NewReader(listingPage), tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHTML_FeedsCatalog(t *testing.T) {
	names, err := ParseHTML(strings.NewReader(listingPage), "")
	require.NoError(t, err)

	c := New(names...)
	assert.Equal(t, []string{"Consoles", "GPUs", "Trading Cards"}, c.Names())
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		if r.URL.Path != "/monitors" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(listingPage)) // nolint:errcheck
	}))
	defer server.Close()

	f := NewFetcher()

	names, err := f.Fetch(server.URL+"/monitors", "#bestbuy li")
	require.NoError(t, err)
	assert.Equal(t, []string{"GPUs", "Consoles"}, names)

	_, err = f.Fetch(server.URL+"/missing", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}
