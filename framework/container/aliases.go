package container

// aliasTable maps alias → target. Targets may themselves be aliases; chains
// are kept acyclic by add.
type aliasTable struct {
	links map[string]string
}

func newAliasTable() *aliasTable {
	return &aliasTable{links: make(map[string]string)}
}

// add registers alias → target, rejecting any mapping that would loop back
// to alias.
func (t *aliasTable) add(alias, target string) error {
	if alias == target {
		return &CyclicAliasError{Alias: alias, Abstract: target, Path: []string{alias, alias}}
	}

	path := []string{alias, target}
	visited := map[string]bool{target: true}
	for cur := target; ; {
		next, ok := t.links[cur]
		if !ok {
			break
		}
		path = append(path, next)
		if next == alias {
			return &CyclicAliasError{Alias: alias, Abstract: target, Path: path}
		}
		if visited[next] {
			break
		}
		visited[next] = true
		cur = next
	}

	t.links[alias] = target
	return nil
}

// canonical follows links until it reaches an id with no mapping.
func (t *aliasTable) canonical(id string) string {
	for {
		next, ok := t.links[id]
		if !ok {
			return id
		}
		id = next
	}
}

func (t *aliasTable) isAlias(id string) bool {
	_, ok := t.links[id]
	return ok
}

func (t *aliasTable) snapshot() map[string]string {
	out := make(map[string]string, len(t.links))
	for alias, target := range t.links {
		out[alias] = target
	}
	return out
}
