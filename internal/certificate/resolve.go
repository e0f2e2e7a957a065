package certificate

import "strings"

// ProviderResolver resolves the provider for a single game instance.
// Resolvers are tried in order; the first hit wins.
type ProviderResolver interface {
	Resolve(instance GameInstance) (string, bool)
}

// ReferenceResolver resolves providers by normalized-name lookup in the
// reference table. The table is the authoritative name-to-provider source
// for the names it actually contains.
type ReferenceResolver struct {
	Table ReferenceTable
}

// Resolve looks up the instance's normalized game name
func (r ReferenceResolver) Resolve(instance GameInstance) (string, bool) {
	key := NormalizeName(deref(instance.GameName))
	if key == "" {
		return "", false
	}
	entry, ok := r.Table[key]
	if !ok {
		return "", false
	}
	return entry.Provider, true
}

// codeSuffixProviders maps known game-code suffixes to their providers.
// Extraction can yield a game code without a reliably matching name, so
// these act as a fallback behind the reference table.
var codeSuffixProviders = map[string]string{
	"_mcg": "Games Global",
	"_prg": "Pragmatic",
}

// CodeSuffixResolver resolves providers from recognized game-code suffixes
type CodeSuffixResolver struct{}

// Resolve checks the instance's game code against the known suffixes
func (CodeSuffixResolver) Resolve(instance GameInstance) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(deref(instance.GameCode)))
	if code == "" {
		return "", false
	}
	for suffix, provider := range codeSuffixProviders {
		if strings.HasSuffix(code, suffix) {
			return provider, true
		}
	}
	return "", false
}

// resolverChain builds the ordered resolver list for a reference table
func resolverChain(table ReferenceTable) []ProviderResolver {
	return []ProviderResolver{
		ReferenceResolver{Table: table},
		CodeSuffixResolver{},
	}
}

// ResolveProvider runs the resolver chain for one instance. The second
// return value is false when no strategy produced a provider; callers route
// such instances to the Uncategorized bucket.
func ResolveProvider(instance GameInstance, table ReferenceTable) (string, bool) {
	for _, r := range resolverChain(table) {
		if provider, ok := r.Resolve(instance); ok {
			return provider, true
		}
	}
	return "", false
}
