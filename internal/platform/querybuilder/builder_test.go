package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("player_id", "full_name").
		From("nfl_roster").
		Where(Eq("team_slug", "kc"), IsNull("released_at")).
		OrderBy("player_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, full_name FROM nfl_roster WHERE team_slug = $1 AND released_at IS NULL ORDER BY player_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "kc" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderGte(t *testing.T) {
	query, args, err := Select("id").
		From("ingest_job_runs").
		Where(Gte("started_at", "2025-09-01")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM ingest_job_runs WHERE started_at >= $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "2025-09-01" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("nfl_roster").
		Columns("player_id", "full_name").
		Values("p1", "Player One").
		Suffix("RETURNING player_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO nfl_roster (player_id, full_name) VALUES ($1, $2) RETURNING player_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "Player One" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderRows(t *testing.T) {
	query, args, err := InsertInto("nfl_rushing").
		Columns("player_id", "rushing.yards").
		Rows([][]any{
			{"p1", int64(512)},
			{"p2", int64(871)},
		}).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO nfl_rushing (player_id, rushing.yards) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("ingest_job_runs").
		Set("status", "success").
		SetExpr("finished_at", "NOW()").
		Where(Eq("id", "run-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE ingest_job_runs SET status = $1, finished_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "success" || args[1] != "run-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("nfl_snap_counts").
		Where(InTuples(
			[]string{"player_id", "season", "game_week"},
			[][]any{
				{"p1", int64(2025), int64(3)},
				{"p2", int64(2025), int64(3)},
			},
		)).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM nfl_snap_counts WHERE (player_id, season, game_week) IN (($1, $2, $3), ($4, $5, $6))"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[3] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilderRequiresConditions(t *testing.T) {
	if _, _, err := DeleteFrom("nfl_roster").ToSQL(); err == nil {
		t.Fatal("expected error for delete without conditions")
	}
}

func TestInTuplesEmptyRowsMatchesNothing(t *testing.T) {
	query, args, err := Select("player_id").
		From("nfl_player_gamelog").
		Where(InTuples([]string{"player_id", "season"}, nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id FROM nfl_player_gamelog WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := QuoteIdent(`receiving.yards`); got != `"receiving.yards"` {
		t.Fatalf("unexpected quoted identifier: %s", got)
	}
	if got := QuoteIdent(`odd"name`); got != `"odd""name"` {
		t.Fatalf("unexpected quoted identifier: %s", got)
	}
}
