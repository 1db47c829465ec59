package slug

import gslug "github.com/gosimple/slug"

// Make derives the URL-safe key used for tags and categories from a display name.
func Make(name string) string {
	return gslug.Make(name)
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return gslug.IsSlug(s)
}
