package dashboard

import (
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
)

// ChartPatch is a partial chart update. Nil fields (JSON null or absent) keep the stored value.
type ChartPatch struct {
	Type     *schema.ChartType `json:"type,omitempty"`
	Title    *string           `json:"title,omitempty"`
	Labels   []schema.Label    `json:"labels"`
	Datasets []schema.Dataset  `json:"datasets"`
}

// ReplaceChart builds a patch that overwrites every field of the definition.
func ReplaceChart(d schema.ChartDefinition) ChartPatch {
	return ChartPatch{Type: &d.Type, Title: &d.Title, Labels: d.Labels, Datasets: d.Datasets}
}

func (p ChartPatch) apply(d schema.ChartDefinition) schema.ChartDefinition {
	out := d.Clone()
	if p.Type != nil {
		out.Type = canonicalType(*p.Type)
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Labels != nil {
		out.Labels = append([]schema.Label(nil), p.Labels...)
	}
	if p.Datasets != nil {
		out.Datasets = schema.ChartDefinition{Datasets: p.Datasets}.Clone().Datasets
	}
	return out
}

// canonicalType fixes the spelling of known kinds ("POLARAREA" -> "polarArea").
// Unknown kinds pass through for the validator to reject.
func canonicalType(t schema.ChartType) schema.ChartType {
	if c, ok := schema.ParseChartType(string(t)); ok {
		return c
	}
	return t
}

// SaveChart validates def, assigns an id and timestamps, and appends it to the collection.
func (s *Store) SaveChart(def schema.ChartDefinition) (schema.Chart, error) {
	def.Type = canonicalType(def.Type)
	if err := validate.ValidateChart(def); err != nil {
		return schema.Chart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	charts, err := load[schema.Chart](s.storage, s.ChartsKey())
	if err != nil {
		return schema.Chart{}, err
	}

	now := s.now()
	chart := schema.Chart{
		ID:              s.newID(),
		ChartDefinition: def.Clone(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := store(s.storage, s.ChartsKey(), append(charts, chart)); err != nil {
		return schema.Chart{}, err
	}

	s.notify(OpCreated, CollectionCharts, chart.ID)
	return chart, nil
}

// GetAllCharts returns every stored chart. Read failures are logged and yield an empty slice.
func (s *Store) GetAllCharts() []schema.Chart {
	return readAll[schema.Chart](s.storage, s.ChartsKey())
}

// GetChartByID returns the chart with the given id or ErrChartNotFound.
func (s *Store) GetChartByID(id string) (schema.Chart, error) {
	for _, c := range s.GetAllCharts() {
		if c.ID == id {
			return c, nil
		}
	}
	return schema.Chart{}, ErrChartNotFound
}

// UpdateChart shallow-merges patch over the stored chart and refreshes UpdatedAt.
// The merged chart must still satisfy the chart rules.
func (s *Store) UpdateChart(id string, patch ChartPatch) (schema.Chart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	charts, err := load[schema.Chart](s.storage, s.ChartsKey())
	if err != nil {
		return schema.Chart{}, err
	}

	index := -1
	for i, c := range charts {
		if c.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return schema.Chart{}, ErrChartNotFound
	}

	merged := patch.apply(charts[index].ChartDefinition)
	if err := validate.ValidateChart(merged); err != nil {
		return schema.Chart{}, err
	}

	charts[index].ChartDefinition = merged
	charts[index].UpdatedAt = s.now()

	if err := store(s.storage, s.ChartsKey(), charts); err != nil {
		return schema.Chart{}, err
	}

	s.notify(OpUpdated, CollectionCharts, id)
	return charts[index], nil
}

// DeleteChart removes the chart with the given id. Nothing is written when no chart matched.
func (s *Store) DeleteChart(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	charts, err := load[schema.Chart](s.storage, s.ChartsKey())
	if err != nil {
		return err
	}

	kept := make([]schema.Chart, 0, len(charts))
	for _, c := range charts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(charts) {
		return ErrChartNotFound
	}

	if err := store(s.storage, s.ChartsKey(), kept); err != nil {
		return err
	}

	s.notify(OpDeleted, CollectionCharts, id)
	return nil
}
