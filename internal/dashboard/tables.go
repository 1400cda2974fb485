package dashboard

import (
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
)

// TablePatch is a partial table update. Nil fields (JSON null or absent) keep the stored value.
type TablePatch struct {
	Title   *string    `json:"title,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ReplaceTable builds a patch that overwrites every field of the definition.
func ReplaceTable(d schema.TableDefinition) TablePatch {
	rows := d.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return TablePatch{Title: &d.Title, Headers: d.Headers, Rows: rows}
}

func (p TablePatch) apply(d schema.TableDefinition) schema.TableDefinition {
	out := d
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Headers != nil {
		out.Headers = p.Headers
	}
	if p.Rows != nil {
		out.Rows = p.Rows
	}
	return out.Clone()
}

// SaveTable validates def, assigns an id and timestamps, and appends it to the collection.
func (s *Store) SaveTable(def schema.TableDefinition) (schema.Table, error) {
	if def.Rows == nil {
		def.Rows = [][]string{}
	}
	if err := validate.ValidateTable(def); err != nil {
		return schema.Table{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := load[schema.Table](s.storage, s.TablesKey())
	if err != nil {
		return schema.Table{}, err
	}

	now := s.now()
	table := schema.Table{
		ID:              s.newID(),
		TableDefinition: def.Clone(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := store(s.storage, s.TablesKey(), append(tables, table)); err != nil {
		return schema.Table{}, err
	}

	s.notify(OpCreated, CollectionTables, table.ID)
	return table, nil
}

// GetAllTables returns every stored table. Read failures are logged and yield an empty slice.
func (s *Store) GetAllTables() []schema.Table {
	return readAll[schema.Table](s.storage, s.TablesKey())
}

// GetTableByID returns the table with the given id or ErrTableNotFound.
func (s *Store) GetTableByID(id string) (schema.Table, error) {
	for _, t := range s.GetAllTables() {
		if t.ID == id {
			return t, nil
		}
	}
	return schema.Table{}, ErrTableNotFound
}

// UpdateTable shallow-merges patch over the stored table and refreshes UpdatedAt.
func (s *Store) UpdateTable(id string, patch TablePatch) (schema.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := load[schema.Table](s.storage, s.TablesKey())
	if err != nil {
		return schema.Table{}, err
	}

	index := -1
	for i, t := range tables {
		if t.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return schema.Table{}, ErrTableNotFound
	}

	merged := patch.apply(tables[index].TableDefinition)
	if err := validate.ValidateTable(merged); err != nil {
		return schema.Table{}, err
	}

	tables[index].TableDefinition = merged
	tables[index].UpdatedAt = s.now()

	if err := store(s.storage, s.TablesKey(), tables); err != nil {
		return schema.Table{}, err
	}

	s.notify(OpUpdated, CollectionTables, id)
	return tables[index], nil
}

// DeleteTable removes the table with the given id. Nothing is written when no table matched.
func (s *Store) DeleteTable(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := load[schema.Table](s.storage, s.TablesKey())
	if err != nil {
		return err
	}

	kept := make([]schema.Table, 0, len(tables))
	for _, t := range tables {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tables) {
		return ErrTableNotFound
	}

	if err := store(s.storage, s.TablesKey(), kept); err != nil {
		return err
	}

	s.notify(OpDeleted, CollectionTables, id)
	return nil
}
