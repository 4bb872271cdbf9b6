package knowledge

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// URIScheme prefixes every knowledge resource URI.
const URIScheme = "openfoodfacts://"

const (
	mimeMarkdown = "text/markdown"
	mimeJSON     = "application/json"
	mimeText     = "text/plain"

	taxonomyPrefix = "taxonomy/"
	taxonomyRepo   = "https://github.com/openfoodfacts/openfoodfacts-server/tree/main/taxonomies"
)

//go:embed content
var content embed.FS

// Document is one static knowledge entry.
type Document struct {
	Key         string `json:"key"`
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mimeType"`
	Text        string `json:"-"`
}

type entry struct {
	key         string
	file        string
	name        string
	description string
	mimeType    string
}

var entries = []entry{
	{"help", "help.md", "Quick Help Guide", "How to use the Open Food Facts tools - quick reference", mimeMarkdown},
	{"nutriscore-guide", "nutriscore-guide.md", "Nutri-Score Guide", "Understanding Nutri-Score health ratings (A-E)", mimeMarkdown},
	{"ecoscore-guide", "ecoscore-guide.md", "Eco-Score Guide", "Understanding Eco-Score environmental ratings (A-E)", mimeMarkdown},
	{"allergens-list", "allergens-list.md", "Allergens Reference", "Common food allergens and where they hide", mimeMarkdown},
	{"additives-guide", "additives-guide.md", "Food Additives Guide", "Understanding E-numbers and food additives", mimeMarkdown},
	{"nova-guide", "nova-guide.md", "NOVA Processing Guide", "Understanding food processing levels (1-4)", mimeMarkdown},
	{"info", "info.json", "Open Food Facts Info", "General information about the Open Food Facts database", mimeJSON},
	{"schema", "schema.md", "Database Schema", "Overview of the Open Food Facts product data structure", mimeMarkdown},
	{"taxonomy/categories", "taxonomy-categories.txt", "Categories Taxonomy", "Snapshot of the main food categories", mimeText},
}

// taxonomyTypes are served by the taxonomy template besides categories.
var taxonomyTypes = map[string]string{
	"labels":      "Labels such as organic, fair-trade or vegan",
	"countries":   "Countries where products are sold",
	"ingredients": "Ingredients and their parent ingredients",
	"allergens":   "Allergens declared on labels",
	"additives":   "Food additives by E-number",
	"brands":      "Brand names",
}

// Provider serves the embedded documents. It is read-only after New.
type Provider struct {
	docs  []*Document
	byKey map[string]*Document
}

// New loads every embedded document.
func New() (*Provider, error) {
	p := &Provider{byKey: make(map[string]*Document, len(entries))}
	for _, e := range entries {
		data, err := content.ReadFile("content/" + e.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.file, err)
		}
		doc := &Document{
			Key:         e.key,
			URI:         URI(e.key),
			Name:        e.name,
			Description: e.description,
			MIMEType:    e.mimeType,
			Text:        string(data),
		}
		p.docs = append(p.docs, doc)
		p.byKey[e.key] = doc
	}
	return p, nil
}

// URI returns the resource URI of a key.
func URI(key string) string {
	return URIScheme + key
}

// TaxonomyTemplate is the URI template served by Taxonomy.
func TaxonomyTemplate() string {
	return URI(taxonomyPrefix + "{type}")
}

// Documents returns the fixed documents in registration order.
func (p *Provider) Documents() []*Document {
	out := make([]*Document, len(p.docs))
	copy(out, p.docs)
	return out
}

// Keys returns the known keys, sorted.
func (p *Provider) Keys() []string {
	keys := make([]string, 0, len(p.byKey))
	for k := range p.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the document stored under key.
func (p *Provider) Get(key string) (*Document, error) {
	if doc, ok := p.byKey[key]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("%w: resource %q (known resources: %s)", domain.ErrNotFound, key, strings.Join(p.Keys(), ", "))
}

// Taxonomy serves openfoodfacts://taxonomy/{type}. Categories come from the
// embedded snapshot; the other known types point to autocomplete.
func (p *Provider) Taxonomy(taxonomyType string) (*Document, error) {
	t := strings.ToLower(strings.TrimSpace(taxonomyType))
	if t == "categories" {
		return p.Get(taxonomyPrefix + t)
	}

	desc, ok := taxonomyTypes[t]
	if !ok {
		return nil, fmt.Errorf("%w: taxonomy %q", domain.ErrNotFound, taxonomyType)
	}

	key := taxonomyPrefix + t
	text := fmt.Sprintf("Taxonomy: %s\n\n%s.\n\n"+
		"This taxonomy is too large to embed. Use the autocomplete tool with "+
		"taxonomyType %q to look up entries, for example:\n\n"+
		"autocomplete({ \"query\": \"...\", \"taxonomyType\": %q })\n\n"+
		"For full taxonomy data, please visit:\n%s\n",
		t, desc, t, t, taxonomyRepo)

	return &Document{
		Key:         key,
		URI:         URI(key),
		Name:        "Taxonomy: " + t,
		Description: desc,
		MIMEType:    mimeText,
		Text:        text,
	}, nil
}

// ResolveURI routes an openfoodfacts:// URI to Get or Taxonomy.
func (p *Provider) ResolveURI(uri string) (*Document, error) {
	key, ok := strings.CutPrefix(uri, URIScheme)
	if !ok || key == "" {
		return nil, fmt.Errorf("%w: resource %q", domain.ErrNotFound, uri)
	}
	if doc, ok := p.byKey[key]; ok {
		return doc, nil
	}
	if t, ok := strings.CutPrefix(key, taxonomyPrefix); ok {
		return p.Taxonomy(t)
	}
	return p.Get(key)
}
