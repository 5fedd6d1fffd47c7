package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Schema description and GraphQL reads carry no warehouse mutations.
	return []string{"/api/schema", "/api/schema/templates", "/graphql"}
}
