package playerstat

// NoDataSentinel is how the upstream feed marks a missing caught_stealing count.
const NoDataSentinel = "--"

// SourceKey maps one upstream key onto its canonical field.
type SourceKey struct {
	Key   string
	Field Field
}

// sourceKeys is the upstream feed's naming, one entry per canonical field.
var sourceKeys = []SourceKey{
	{Key: "Player name", Field: FieldPlayerName},
	{Key: "position", Field: FieldPosition},
	{Key: "Games", Field: FieldGames},
	{Key: "At-bat", Field: FieldAtBat},
	{Key: "Runs", Field: FieldRuns},
	{Key: "Hits", Field: FieldHits},
	{Key: "Double (2B)", Field: FieldDouble2B},
	{Key: "third baseman", Field: FieldThirdBaseman},
	{Key: "home run", Field: FieldHomeRun},
	{Key: "run batted in", Field: FieldRunBattedIn},
	{Key: "a walk", Field: FieldAWalk},
	{Key: "Strikeouts", Field: FieldStrikeouts},
	{Key: "stolen base", Field: FieldStolenBase},
	{Key: "Caught stealing", Field: FieldCaughtStealing},
	{Key: "AVG", Field: FieldAvg},
	{Key: "On-base Percentage", Field: FieldOnBasePercentage},
	{Key: "Slugging Percentage", Field: FieldSluggingPercentage},
	{Key: "On-base Plus Slugging", Field: FieldOnBasePlusSlugging},
}

// sentinelFields accept NoDataSentinel as zero. Only caught_stealing is known
// to carry it upstream.
var sentinelFields = map[Field]struct{}{
	FieldCaughtStealing: {},
}

// SourceKeys returns the upstream key table.
func SourceKeys() []SourceKey {
	return append([]SourceKey(nil), sourceKeys...)
}

// Normalize maps one upstream record onto the canonical schema. Missing keys
// and JSON nulls take the field's zero value; keys outside the table are
// ignored. The returned record has no ID.
func Normalize(raw map[string]any) (Record, error) {
	var rec Record
	for _, sk := range sourceKeys {
		value, ok := raw[sk.Key]
		if !ok || value == nil {
			continue
		}

		if _, sentinel := sentinelFields[sk.Field]; sentinel {
			if s, isString := value.(string); isString && s == NoDataSentinel {
				continue
			}
		}

		coerced, err := Coerce(sk.Field, value)
		if err != nil {
			return Record{}, err
		}
		if err := rec.Set(sk.Field, coerced); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}
