package postgres

import "github.com/riskibarqy/baseball-stats/internal/domain/playerstat"

const playerStatTable = "player"

var playerStatConflictTarget = []string{"player_name"}

type playerStatInsertModel struct {
	PlayerName         string  `db:"player_name"`
	Position           string  `db:"position"`
	Games              int64   `db:"games"`
	AtBat              int64   `db:"at_bat"`
	Runs               int64   `db:"runs"`
	Hits               int64   `db:"hits"`
	Double2B           int64   `db:"double_2b"`
	ThirdBaseman       int64   `db:"third_baseman"`
	HomeRun            int64   `db:"home_run"`
	RunBattedIn        int64   `db:"run_batted_in"`
	AWalk              int64   `db:"a_walk"`
	Strikeouts         int64   `db:"strikeouts"`
	StolenBase         int64   `db:"stolen_base"`
	CaughtStealing     int64   `db:"caught_stealing"`
	Avg                float64 `db:"avg"`
	OnBasePercentage   float64 `db:"on_base_percentage"`
	SluggingPercentage float64 `db:"slugging_percentage"`
	OnBasePlusSlugging float64 `db:"on_base_plus_slugging"`
}

type playerStatTableModel struct {
	ID int64 `db:"id"`
	playerStatInsertModel
}

func newPlayerStatInsertModel(rec playerstat.Record) playerStatInsertModel {
	return playerStatInsertModel{
		PlayerName:         rec.PlayerName,
		Position:           rec.Position,
		Games:              rec.Games,
		AtBat:              rec.AtBat,
		Runs:               rec.Runs,
		Hits:               rec.Hits,
		Double2B:           rec.Double2B,
		ThirdBaseman:       rec.ThirdBaseman,
		HomeRun:            rec.HomeRun,
		RunBattedIn:        rec.RunBattedIn,
		AWalk:              rec.AWalk,
		Strikeouts:         rec.Strikeouts,
		StolenBase:         rec.StolenBase,
		CaughtStealing:     rec.CaughtStealing,
		Avg:                rec.Avg,
		OnBasePercentage:   rec.OnBasePercentage,
		SluggingPercentage: rec.SluggingPercentage,
		OnBasePlusSlugging: rec.OnBasePlusSlugging,
	}
}

func (m playerStatTableModel) toDomain() playerstat.Record {
	return playerstat.Record{
		ID:                 m.ID,
		PlayerName:         m.PlayerName,
		Position:           m.Position,
		Games:              m.Games,
		AtBat:              m.AtBat,
		Runs:               m.Runs,
		Hits:               m.Hits,
		Double2B:           m.Double2B,
		ThirdBaseman:       m.ThirdBaseman,
		HomeRun:            m.HomeRun,
		RunBattedIn:        m.RunBattedIn,
		AWalk:              m.AWalk,
		Strikeouts:         m.Strikeouts,
		StolenBase:         m.StolenBase,
		CaughtStealing:     m.CaughtStealing,
		Avg:                m.Avg,
		OnBasePercentage:   m.OnBasePercentage,
		SluggingPercentage: m.SluggingPercentage,
		OnBasePlusSlugging: m.OnBasePlusSlugging,
	}
}
