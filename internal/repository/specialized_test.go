package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/testing/fakedb"
)

// ============================================================================
// Antique Settings
// ============================================================================

func antiqueRow(id int, item, category string) database.Row {
	return database.Row{
		"id":                  int64(id),
		"item_name":           item,
		"category":            category,
		"roll_count":          int64(1),
		"force_fusion":        false,
		"force_no_fusion":     false,
		"allow_fusion":        true,
		"override_parameters": `{"minLevel": 5}`,
	}
}

func TestAntiqueUpsert_ConflictsOnItemName(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("INSERT INTO antique_settings", func(args []interface{}) (*database.Result, error) {
		return &database.Result{Rows: []database.Row{antiqueRow(1, args[0].(string), args[1].(string))}}, nil
	})
	repo := NewAntiqueSettingRepository(db)

	got, err := repo.Upsert(context.Background(), &model.AntiqueSettingInput{ItemName: "Old Vase", Category: "holiday"})
	require.NoError(t, err)

	assert.Equal(t, "holiday", got.Category)
	assert.Equal(t, map[string]interface{}{"minLevel": float64(5)}, got.OverrideParameters)

	call := db.LastCall()
	assert.Contains(t, call.Query, "ON CONFLICT (item_name) DO UPDATE SET")
	assert.Contains(t, call.Query, "category = EXCLUDED.category")
	assert.Equal(t, []interface{}{"Old Vase", "holiday", (*string)(nil), 1, false, false, true, (*int)(nil), "{}"}, call.Args)
}

func TestAntiqueCreate_DelegatesToUpsert(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("INSERT INTO antique_settings", fakedb.Rows(antiqueRow(1, "Old Vase", "evolution")))

	_, err := NewAntiqueSettingRepository(db).Create(context.Background(), &model.AntiqueSettingInput{ItemName: "Old Vase", Category: "evolution"})
	require.NoError(t, err)
	assert.Len(t, db.CallsMatching("ON CONFLICT (item_name)"), 1)
}

func TestAntiqueUpdate_EmptyReturnsCurrentWithoutWriting(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("FROM antique_settings WHERE id", fakedb.Rows(antiqueRow(1, "Old Vase", "holiday")))
	repo := NewAntiqueSettingRepository(db)

	got, err := repo.Update(context.Background(), 1, &model.AntiqueSettingUpdateInput{})
	require.NoError(t, err)

	assert.Equal(t, "Old Vase", got.ItemName)
	assert.Empty(t, db.CallsMatching("INSERT"))
}

func TestAntiqueUpdate_MergesAndUpserts(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("FROM antique_settings WHERE id", fakedb.Rows(antiqueRow(1, "Old Vase", "holiday")))
	db.On("INSERT INTO antique_settings", fakedb.Rows(antiqueRow(1, "Old Vase", "evolution")))
	repo := NewAntiqueSettingRepository(db)

	category := "evolution"
	rolls := 3
	_, err := repo.Update(context.Background(), 1, &model.AntiqueSettingUpdateInput{Category: &category, RollCount: &rolls})
	require.NoError(t, err)

	args := db.LastCall().Args
	assert.Equal(t, "Old Vase", args[0])
	assert.Equal(t, "evolution", args[1])
	assert.Equal(t, 3, args[3])
	assert.Equal(t, true, args[6], "unchanged fields keep stored values")
	assert.JSONEq(t, `{"minLevel": 5}`, args[8].(string))
}

func TestAntiqueUpdate_ClearHolidayWritesNull(t *testing.T) {
	t.Parallel()

	stored := antiqueRow(1, "Old Vase", "holiday")
	stored["holiday"] = "Halloween"
	db := fakedb.New()
	db.On("FROM antique_settings WHERE id", fakedb.Rows(stored))
	db.On("INSERT INTO antique_settings", fakedb.Rows(antiqueRow(1, "Old Vase", "holiday")))

	_, err := NewAntiqueSettingRepository(db).Update(context.Background(), 1, &model.AntiqueSettingUpdateInput{ClearHoliday: true})
	require.NoError(t, err)

	assert.Equal(t, (*string)(nil), db.LastCall().Args[2])
}

func TestAntiqueUpdate_UnknownID(t *testing.T) {
	t.Parallel()

	_, err := NewAntiqueSettingRepository(fakedb.New()).Update(context.Background(), 1, &model.AntiqueSettingUpdateInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================================
// Battle Logs
// ============================================================================

func TestClearOldLogs_SingleStatementKeepsNewest(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("DELETE FROM battle_logs", fakedb.Affected(7))
	repo := NewBattleLogRepository(db)

	n, err := repo.ClearOldLogs(context.Background(), "battle-1", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	calls := db.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Query, "id NOT IN ( SELECT id FROM battle_logs WHERE battle_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 )")
	assert.Equal(t, []interface{}{"battle-1", 5}, calls[0].Args)
}

func TestClearOldLogs_NegativeKeepIsZero(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	_, err := NewBattleLogRepository(db).ClearOldLogs(context.Background(), "battle-1", -3)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"battle-1", 0}, db.LastCall().Args)
}

func TestBattleLogCreate_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	_, err := NewBattleLogRepository(db).Create(context.Background(), &model.BattleLogCreateInput{
		BattleID: "b", LogType: "taunt", Message: "hey",
	})
	assert.ErrorIs(t, err, model.ErrInvalidLogType)
	assert.Empty(t, db.Calls())
}

func TestBattleLogHelpers_SetLogType(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("INSERT INTO battle_logs", fakedb.Rows(database.Row{"id": int64(1)}))
	db.On("FROM battle_logs WHERE id", fakedb.Rows(database.Row{
		"id": int64(1), "battle_id": "b", "log_type": "damage", "message": "Ember hits", "log_data": nil,
	}))

	entry, err := NewBattleLogRepository(db).LogDamage(context.Background(), "b", "Ember hits", map[string]interface{}{"amount": 12})
	require.NoError(t, err)

	assert.Equal(t, model.LogTypeDamage, entry.LogType)
	assert.Equal(t, map[string]interface{}{}, entry.LogData)
	insert := db.CallsMatching("INSERT INTO battle_logs")
	require.Len(t, insert, 1)
	assert.Equal(t, "damage", insert[0].Args[1])
	assert.JSONEq(t, `{"amount": 12}`, insert[0].Args[3].(string))
}

func TestBattleLogFindByBattleID_LimitKeepsNewestInChronologicalOrder(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	_, err := NewBattleLogRepository(db).FindByBattleID(context.Background(), "b", model.BattleLogQuery{LogType: model.LogTypeAction, Limit: 20})
	require.NoError(t, err)

	call := db.LastCall()
	assert.Contains(t, call.Query, "ORDER BY created_at DESC, id DESC LIMIT $3")
	assert.Contains(t, call.Query, ") newest ORDER BY created_at ASC, id ASC")
	assert.Equal(t, []interface{}{"b", "action", 20}, call.Args)
}

func TestBattleLogUpdate_IsInert(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("FROM battle_logs WHERE id", fakedb.Rows(database.Row{"id": int64(4), "battle_id": "b", "log_type": "system", "message": "start"}))

	entry, err := NewBattleLogRepository(db).Update(context.Background(), 4, &model.BattleLogUpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, "start", entry.Message)
	assert.Empty(t, db.CallsMatching("UPDATE"))
}

func TestBattlesOverRetention(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("HAVING COUNT(*) > $1", fakedb.Rows(
		database.Row{"battle_id": "a", "count": int64(250)},
		database.Row{"battle_id": "b", "count": int64(201)},
	))

	got, err := NewBattleLogRepository(db).BattlesOverRetention(context.Background(), 200)
	require.NoError(t, err)
	assert.Equal(t, []model.BattleLogCount{{BattleID: "a", Count: 250}, {BattleID: "b", Count: 201}}, got)
}

// ============================================================================
// Trades
// ============================================================================

func TestAutomatedTradeUpdate_ReturnsExisting(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("WHERE at.id", fakedb.Rows(database.Row{
		"id": int64(2), "from_trainer_id": int64(1), "to_trainer_id": int64(3),
		"from_items": `{"Poke Ball": 2}`, "to_items": "[object Object]",
		"from_monsters": "[]", "to_monsters": `[14]`,
		"from_trainer_name": "Ash", "to_trainer_name": "Misty",
	}))
	repo := NewAutomatedTradeRepository(db)

	trade, err := repo.Update(context.Background(), 2, &model.AutomatedTradeUpdateInput{})
	require.NoError(t, err)

	assert.Equal(t, "Misty", trade.ToTrainerName)
	assert.Equal(t, map[string]interface{}{}, trade.ToItems)
	assert.Equal(t, []interface{}{float64(14)}, trade.ToMonsters)
	assert.Empty(t, db.CallsMatching("UPDATE"))

	_, err = NewAutomatedTradeRepository(fakedb.New()).Update(context.Background(), 2, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================================
// Chat
// ============================================================================

func TestDmRequestRespond(t *testing.T) {
	t.Parallel()

	t.Run("pending request is accepted", func(t *testing.T) {
		db := fakedb.New()
		db.On("UPDATE chat_dm_requests", fakedb.Rows(database.Row{"id": int64(1), "status": "accepted"}))

		req, err := NewDmRequestRepository(db).Respond(context.Background(), 1, true)
		require.NoError(t, err)
		assert.Equal(t, model.DmRequestAccepted, req.Status)
		assert.Equal(t, []interface{}{"accepted", 1}, db.LastCall().Args)
	})

	t.Run("answered request is not pending", func(t *testing.T) {
		db := fakedb.New()
		db.On("FROM chat_dm_requests WHERE id", fakedb.Rows(database.Row{"id": int64(1), "status": "rejected"}))

		_, err := NewDmRequestRepository(db).Respond(context.Background(), 1, true)
		assert.ErrorIs(t, err, ErrRequestNotPending)
	})

	t.Run("missing request", func(t *testing.T) {
		_, err := NewDmRequestRepository(fakedb.New()).Respond(context.Background(), 1, false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestChatRoomFindByTrainerID_UnreadIsAFlag(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("FROM chat_rooms cr", fakedb.Rows(
		database.Row{"id": int64(1), "name": "Kanto", "room_type": "group", "member_count": int64(4), "unread": int64(1)},
		database.Row{"id": int64(2), "name": "Ash/Misty", "room_type": "direct", "member_count": int64(2), "unread": int64(0)},
	))

	rooms, err := NewChatRoomRepository(db).FindByTrainerID(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	assert.Equal(t, 1, rooms[0].Unread)
	assert.Equal(t, 4, rooms[0].MemberCount)
	assert.Equal(t, model.RoomTypeDirect, rooms[1].RoomType)
	assert.Contains(t, db.LastCall().Query, "cr.last_message_at > me.last_read_at")
}

func TestChatRoomCreate_DefaultsToGroup(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("INSERT INTO chat_rooms", fakedb.Rows(database.Row{"id": int64(3)}))
	db.On("FROM chat_rooms WHERE id", fakedb.Rows(database.Row{"id": int64(3), "name": "Kanto", "room_type": "group"}))
	repo := NewChatRoomRepository(db)

	_, err := repo.Create(context.Background(), &model.ChatRoomCreateInput{Name: "Kanto"})
	require.NoError(t, err)
	assert.Equal(t, "group", db.CallsMatching("INSERT INTO chat_rooms")[0].Args[1])

	_, err = repo.Create(context.Background(), &model.ChatRoomCreateInput{Name: "Kanto", RoomType: "party"})
	assert.ErrorIs(t, err, model.ErrInvalidRoomType)
}

func TestChatRoomMemberAddMember_IgnoresDuplicates(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("WHERE crm.room_id = $1 AND crm.trainer_id = $2", fakedb.Rows(database.Row{
		"id": int64(5), "room_id": int64(1), "trainer_id": int64(9), "role": "owner", "trainer_name": "Ash",
	}))

	m, err := NewChatRoomMemberRepository(db).AddMember(context.Background(), 1, 9, "")
	require.NoError(t, err)

	assert.Equal(t, model.MemberRoleOwner, m.Role)
	insert := db.CallsMatching("INSERT INTO chat_room_members")
	require.Len(t, insert, 1)
	assert.Contains(t, insert[0].Query, "ON CONFLICT (room_id, trainer_id) DO NOTHING")
	assert.Equal(t, []interface{}{1, 9, "member"}, insert[0].Args)
}

// ============================================================================
// Monthly Distribution
// ============================================================================

func TestReplaceItems_IsAllOrNothing(t *testing.T) {
	t.Parallel()

	items := []model.MonthlyDistributionItemInput{
		{ItemName: "Rare Candy", Category: model.CategoryItems, Quantity: 1},
		{ItemName: "Poke Ball", Category: model.CategoryBalls, Quantity: 5},
	}

	t.Run("commits on success", func(t *testing.T) {
		db := fakedb.New()
		db.On("INSERT INTO monthly_distribution_items", func(args []interface{}) (*database.Result, error) {
			return &database.Result{Rows: []database.Row{{
				"id": int64(1), "year": int64(args[0].(int)), "month": int64(args[1].(int)),
				"item_name": args[2], "category": args[3], "quantity": int64(args[4].(int)),
			}}}, nil
		})

		out, err := NewMonthlyDistributionRepository(db).ReplaceItems(context.Background(), 2026, 10, items)
		require.NoError(t, err)

		require.Len(t, out, 2)
		assert.Equal(t, 2026, out[1].Year)
		assert.Equal(t, model.CategoryBalls, out[1].Category)
		assert.Equal(t, 1, db.Begins)
		assert.Equal(t, 1, db.Commits)
		assert.Equal(t, 0, db.Rollbacks)
		assert.Len(t, db.CallsMatching("DELETE FROM monthly_distribution_items"), 1)
	})

	t.Run("rolls back when an insert fails", func(t *testing.T) {
		db := fakedb.New()
		db.Once("INSERT INTO monthly_distribution_items", fakedb.Rows(database.Row{"id": int64(1)}))
		db.On("INSERT INTO monthly_distribution_items", fakedb.Fail(database.ErrQuery))

		_, err := NewMonthlyDistributionRepository(db).ReplaceItems(context.Background(), 2026, 10, items)
		assert.ErrorIs(t, err, database.ErrQuery)
		assert.Equal(t, 0, db.Commits)
		assert.Equal(t, 1, db.Rollbacks)
	})

	t.Run("validates before opening a transaction", func(t *testing.T) {
		db := fakedb.New()
		_, err := NewMonthlyDistributionRepository(db).ReplaceItems(context.Background(), 2026, 13, []model.MonthlyDistributionItemInput{
			{ItemName: "Rare Candy", Category: "snacks", Quantity: 1},
		})

		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.True(t, verr.Has("month"))
		assert.True(t, verr.Has("category"))
		assert.Equal(t, 0, db.Begins)
	})

	t.Run("leaves the caller's items untouched", func(t *testing.T) {
		db := fakedb.New()
		db.On("INSERT INTO monthly_distribution_items", fakedb.Rows(database.Row{"id": int64(1)}))
		in := []model.MonthlyDistributionItemInput{
			{ItemName: "Rare Candy", Category: model.CategoryItems, Quantity: 1},
		}

		_, err := NewMonthlyDistributionRepository(db).ReplaceItems(context.Background(), 2026, 10, in)
		require.NoError(t, err)
		assert.Equal(t, 0, in[0].Year)
		assert.Equal(t, 0, in[0].Month)
	})
}

// ============================================================================
// Achievements and Missions
// ============================================================================

func TestClaimAchievement_SecondClaimFails(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.Once("INSERT INTO trainer_achievement_claims", fakedb.Rows(database.Row{
		"id": int64(1), "trainer_id": int64(4), "achievement_id": "first-catch",
	}))
	repo := NewTrainerAchievementRepository(db)

	claim, err := repo.Claim(context.Background(), 4, "first-catch")
	require.NoError(t, err)
	assert.Equal(t, "first-catch", claim.AchievementID)

	_, err = repo.Claim(context.Background(), 4, "first-catch")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestUserMissionClaimReward_States(t *testing.T) {
	t.Parallel()

	t.Run("still active", func(t *testing.T) {
		db := fakedb.New()
		db.On("WHERE um.id", fakedb.Rows(database.Row{"id": int64(1), "status": "active"}))
		_, err := NewUserMissionRepository(db).ClaimReward(context.Background(), 1)
		assert.ErrorIs(t, err, ErrMissionNotCompleted)
	})

	t.Run("already claimed", func(t *testing.T) {
		db := fakedb.New()
		db.On("WHERE um.id", fakedb.Rows(database.Row{"id": int64(1), "status": "completed", "reward_claimed": true}))
		_, err := NewUserMissionRepository(db).ClaimReward(context.Background(), 1)
		assert.ErrorIs(t, err, ErrRewardAlreadyClaimed)
	})

	t.Run("claims once", func(t *testing.T) {
		db := fakedb.New()
		db.On("UPDATE user_missions SET reward_claimed", fakedb.Rows(database.Row{"id": int64(1)}))
		db.On("WHERE um.id", fakedb.Rows(database.Row{"id": int64(1), "status": "completed", "reward_claimed": "t"}))
		um, err := NewUserMissionRepository(db).ClaimReward(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, um.RewardClaimed)
	})
}

func TestUserMissionAddProgress(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("UPDATE user_missions SET current_progress", fakedb.Rows(database.Row{"id": int64(1)}))
	db.On("WHERE um.id", fakedb.Rows(database.Row{
		"id": int64(1), "status": "completed", "current_progress": int64(3), "required_progress": int64(3), "monster_ids": "[4, 5]",
	}))

	um, err := NewUserMissionRepository(db).AddProgress(context.Background(), 1, 5)
	require.NoError(t, err)

	assert.Equal(t, model.UserMissionCompleted, um.Status)
	assert.Equal(t, []int{4, 5}, um.MonsterIDs)
	assert.Contains(t, db.CallsMatching("UPDATE user_missions")[0].Query, "LEAST(current_progress + $1, required_progress)")

	_, err = NewUserMissionRepository(db).AddProgress(context.Background(), 1, 0)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestMissionFindAll_LevelFilter(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	level := 12
	active := true
	_, err := NewMissionRepository(db).FindAll(context.Background(), model.MissionQuery{Level: &level, Active: &active, Difficulty: model.DifficultyHard})
	require.NoError(t, err)

	count := db.CallsMatching("COUNT(*)")
	require.Len(t, count, 1)
	assert.Contains(t, count[0].Query, "difficulty = $1 AND is_active = $2 AND min_level <= $3 AND (max_level IS NULL OR max_level >= $3)")
	assert.Equal(t, []interface{}{"hard", true, 12}, count[0].Args)

	_, err = NewMissionRepository(db).FindAll(context.Background(), model.MissionQuery{Difficulty: "nightmare"})
	assert.ErrorIs(t, err, model.ErrInvalidDifficulty)
}
