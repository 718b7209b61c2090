package garter

import "fmt"

// Join is a single resolved JOIN clause: the table to bring into scope and
// the equality condition connecting it.
type Join struct {
	Table *Table
	On    *Expr
}

func (j Join) String() string {
	return fmt.Sprintf("JOIN %s ON %s", j.Table, j.On)
}

// resolveJoins finds a JOIN path from the statement's base table to each
// target table by walking declared foreign keys. prior holds explicitly
// requested joins; their tables count as already reachable and targets
// covered by them resolve to nothing new.
//
// For each target the search tries every reachable table in the order it
// became reachable, following that table's outgoing foreign keys first and
// its incoming ones second, so a direct child-to-parent edge always beats a
// reverse hop through some other table. The first path found wins.
func resolveJoins(start *Table, targets []*Table, prior []Join) ([]Join, error) {
	available := []*Table{start}
	for _, j := range prior {
		available = appendTable(available, j.Table)
	}

	var joins []Join
	for _, target := range targets {
		if containsTable(available, target) {
			continue
		}
		path, err := joinPath(available, target, map[*Table]bool{})
		if err != nil {
			return nil, err
		}
		if path == nil {
			return nil, fmt.Errorf("%w: no foreign key path to %s", ErrUnresolvableJoin, target)
		}
		for _, j := range path {
			joins = append(joins, j)
			available = appendTable(available, j.Table)
		}
	}
	return joins, nil
}

// joinPath searches for a chain of joins connecting any available table to
// the target. visited guards against foreign-key cycles.
func joinPath(available []*Table, target *Table, visited map[*Table]bool) ([]Join, error) {
	for _, tab := range available {
		if visited[tab] {
			continue
		}
		visited[tab] = true

		// Forward: tab holds a foreign key into target.
		edges, err := tab.foreignKeyEdges()
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if e.target.table == target {
				return []Join{{Table: target, On: e.local.Eq(e.target)}}, nil
			}
		}

		// Reverse: target holds a foreign key into tab.
		tedges, err := target.foreignKeyEdges()
		if err != nil {
			return nil, err
		}
		for _, e := range tedges {
			if e.target.table == tab {
				return []Join{{Table: target, On: e.local.Eq(e.target)}}, nil
			}
		}
	}

	// No direct edge from any available table. Step one hop out through
	// every foreign key and retry from the larger frontier.
	for _, tab := range available {
		edges, err := tab.foreignKeyEdges()
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			next := e.target.table
			if visited[next] || containsTable(available, next) {
				continue
			}
			hop := Join{Table: next, On: e.local.Eq(e.target)}
			rest, err := joinPath(append(appendTable(nil, available...), next), target, visited)
			if err != nil {
				return nil, err
			}
			if rest != nil {
				return append([]Join{hop}, rest...), nil
			}
		}
	}
	return nil, nil
}

func appendTable(dst []*Table, tabs ...*Table) []*Table {
	for _, t := range tabs {
		if !containsTable(dst, t) {
			dst = append(dst, t)
		}
	}
	return dst
}

func containsTable(tabs []*Table, t *Table) bool {
	for _, have := range tabs {
		if have == t {
			return true
		}
	}
	return false
}
