package request

import "regexp"

// slugRegex matches workspace and segment identifiers: lowercase
// alphanumeric with inner hyphens/underscores, max 63 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)
