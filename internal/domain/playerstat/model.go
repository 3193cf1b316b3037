package playerstat

import "fmt"

// Field is a canonical column name.
type Field string

const (
	FieldID                 Field = "id"
	FieldPlayerName         Field = "player_name"
	FieldPosition           Field = "position"
	FieldGames              Field = "games"
	FieldAtBat              Field = "at_bat"
	FieldRuns               Field = "runs"
	FieldHits               Field = "hits"
	FieldDouble2B           Field = "double_2b"
	FieldThirdBaseman       Field = "third_baseman"
	FieldHomeRun            Field = "home_run"
	FieldRunBattedIn        Field = "run_batted_in"
	FieldAWalk              Field = "a_walk"
	FieldStrikeouts         Field = "strikeouts"
	FieldStolenBase         Field = "stolen_base"
	FieldCaughtStealing     Field = "caught_stealing"
	FieldAvg                Field = "avg"
	FieldOnBasePercentage   Field = "on_base_percentage"
	FieldSluggingPercentage Field = "slugging_percentage"
	FieldOnBasePlusSlugging Field = "on_base_plus_slugging"
)

// Kind is the storage type of a canonical field.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// canonicalFields lists the editable schema in column order. id is excluded.
var canonicalFields = []Field{
	FieldPlayerName,
	FieldPosition,
	FieldGames,
	FieldAtBat,
	FieldRuns,
	FieldHits,
	FieldDouble2B,
	FieldThirdBaseman,
	FieldHomeRun,
	FieldRunBattedIn,
	FieldAWalk,
	FieldStrikeouts,
	FieldStolenBase,
	FieldCaughtStealing,
	FieldAvg,
	FieldOnBasePercentage,
	FieldSluggingPercentage,
	FieldOnBasePlusSlugging,
}

var fieldKinds = map[Field]Kind{
	FieldPlayerName:         KindString,
	FieldPosition:           KindString,
	FieldGames:              KindInt,
	FieldAtBat:              KindInt,
	FieldRuns:               KindInt,
	FieldHits:               KindInt,
	FieldDouble2B:           KindInt,
	FieldThirdBaseman:       KindInt,
	FieldHomeRun:            KindInt,
	FieldRunBattedIn:        KindInt,
	FieldAWalk:              KindInt,
	FieldStrikeouts:         KindInt,
	FieldStolenBase:         KindInt,
	FieldCaughtStealing:     KindInt,
	FieldAvg:                KindFloat,
	FieldOnBasePercentage:   KindFloat,
	FieldSluggingPercentage: KindFloat,
	FieldOnBasePlusSlugging: KindFloat,
}

// Fields returns the canonical schema in column order.
func Fields() []Field {
	return append([]Field(nil), canonicalFields...)
}

// LookupField reports whether name is a canonical field and its kind.
func LookupField(name string) (Field, Kind, bool) {
	f := Field(name)
	kind, ok := fieldKinds[f]
	return f, kind, ok
}

// Record is the canonical stat line of one player, keyed by PlayerName.
type Record struct {
	ID                 int64   `json:"id"`
	PlayerName         string  `json:"player_name"`
	Position           string  `json:"position"`
	Games              int64   `json:"games"`
	AtBat              int64   `json:"at_bat"`
	Runs               int64   `json:"runs"`
	Hits               int64   `json:"hits"`
	Double2B           int64   `json:"double_2b"`
	ThirdBaseman       int64   `json:"third_baseman"`
	HomeRun            int64   `json:"home_run"`
	RunBattedIn        int64   `json:"run_batted_in"`
	AWalk              int64   `json:"a_walk"`
	Strikeouts         int64   `json:"strikeouts"`
	StolenBase         int64   `json:"stolen_base"`
	CaughtStealing     int64   `json:"caught_stealing"`
	Avg                float64 `json:"avg"`
	OnBasePercentage   float64 `json:"on_base_percentage"`
	SluggingPercentage float64 `json:"slugging_percentage"`
	OnBasePlusSlugging float64 `json:"on_base_plus_slugging"`
}

// Value returns the field value as string, int64 or float64.
func (r Record) Value(f Field) (any, bool) {
	switch f {
	case FieldID:
		return r.ID, true
	case FieldPlayerName:
		return r.PlayerName, true
	case FieldPosition:
		return r.Position, true
	case FieldGames:
		return r.Games, true
	case FieldAtBat:
		return r.AtBat, true
	case FieldRuns:
		return r.Runs, true
	case FieldHits:
		return r.Hits, true
	case FieldDouble2B:
		return r.Double2B, true
	case FieldThirdBaseman:
		return r.ThirdBaseman, true
	case FieldHomeRun:
		return r.HomeRun, true
	case FieldRunBattedIn:
		return r.RunBattedIn, true
	case FieldAWalk:
		return r.AWalk, true
	case FieldStrikeouts:
		return r.Strikeouts, true
	case FieldStolenBase:
		return r.StolenBase, true
	case FieldCaughtStealing:
		return r.CaughtStealing, true
	case FieldAvg:
		return r.Avg, true
	case FieldOnBasePercentage:
		return r.OnBasePercentage, true
	case FieldSluggingPercentage:
		return r.SluggingPercentage, true
	case FieldOnBasePlusSlugging:
		return r.OnBasePlusSlugging, true
	default:
		return nil, false
	}
}

// Set assigns an already-coerced value. The value type must match the field kind.
func (r *Record) Set(f Field, value any) error {
	kind, ok := fieldKinds[f]
	if !ok {
		return fmt.Errorf("unknown field %q", f)
	}

	switch kind {
	case KindString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s expects string, got %T", f, value)
		}
		r.setString(f, v)
	case KindInt:
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("field %s expects int64, got %T", f, value)
		}
		r.setInt(f, v)
	case KindFloat:
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("field %s expects float64, got %T", f, value)
		}
		r.setFloat(f, v)
	}
	return nil
}

func (r *Record) setString(f Field, v string) {
	switch f {
	case FieldPlayerName:
		r.PlayerName = v
	case FieldPosition:
		r.Position = v
	}
}

func (r *Record) setInt(f Field, v int64) {
	switch f {
	case FieldGames:
		r.Games = v
	case FieldAtBat:
		r.AtBat = v
	case FieldRuns:
		r.Runs = v
	case FieldHits:
		r.Hits = v
	case FieldDouble2B:
		r.Double2B = v
	case FieldThirdBaseman:
		r.ThirdBaseman = v
	case FieldHomeRun:
		r.HomeRun = v
	case FieldRunBattedIn:
		r.RunBattedIn = v
	case FieldAWalk:
		r.AWalk = v
	case FieldStrikeouts:
		r.Strikeouts = v
	case FieldStolenBase:
		r.StolenBase = v
	case FieldCaughtStealing:
		r.CaughtStealing = v
	}
}

func (r *Record) setFloat(f Field, v float64) {
	switch f {
	case FieldAvg:
		r.Avg = v
	case FieldOnBasePercentage:
		r.OnBasePercentage = v
	case FieldSluggingPercentage:
		r.SluggingPercentage = v
	case FieldOnBasePlusSlugging:
		r.OnBasePlusSlugging = v
	}
}

// Apply sets every entry of values on a copy of r.
func (r Record) Apply(values map[Field]any) (Record, error) {
	for f, v := range values {
		if err := r.Set(f, v); err != nil {
			return Record{}, err
		}
	}
	return r, nil
}
