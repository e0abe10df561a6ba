package importstaging

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/memory"
)

func seedDB(t *testing.T) *memory.Database {
	t.Helper()
	db := memory.New()
	db.SeedPerson(&entity.Person{
		ID: uuid.New(), DisplayName: "Alice Resident", Email: "alice@example.org",
		Type: entity.PersonTypeResident, PGYLevel: pgyLevel(entity.PGY2),
	})

	ctx := context.Background()
	rt := &entity.RotationTemplate{ID: uuid.New(), Name: "ICU Days", ActivityType: "icu"}
	require.NoError(t, db.RotationTemplateRepository().Create(ctx, rt))

	return db
}

func pgyLevel(n entity.PGYLevel) *entity.PGYLevel { return &n }

func workbookBytes(t *testing.T, headers []string, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for rowIdx, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestStageImportRejectsDuplicateFile(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-03"},
	})

	res, err := svc.StageImport(ctx, data, "first.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	dup, err := svc.StageImport(ctx, data, "second.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	assert.False(t, dup.Success)
	assert.Equal(t, ErrCodeDuplicateFile, dup.ErrorCode)
}

func TestStageImportRejectsMissingRequiredColumns(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)

	data := workbookBytes(t, []string{"person_name"}, [][]string{{"Alice Resident"}})
	res, err := svc.StageImport(context.Background(), data, "bad.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrCodeParseError, res.ErrorCode)
}

func TestStageImportRejectsEmptyWorkbook(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, nil)
	res, err := svc.StageImport(context.Background(), data, "empty.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrCodeNoData, res.ErrorCode)
}

func TestStageImportFuzzyMatchesPersonAndRotation(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)

	data := workbookBytes(t, []string{"person_name", "assignment_date", "rotation_name"}, [][]string{
		{"Alice Residnt", "2026-08-03", "ICU Days"},
	})

	res, err := svc.StageImport(context.Background(), data, "fuzzy.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.RowCount)

	rows, err := db.ImportStagedAssignmentRepository().GetByImportBatch(context.Background(), res.BatchID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].MatchedPersonID)
	assert.NotNil(t, rows[0].MatchedRotationID)
}

func TestGetBatchPreviewReportsCountsAndPagination(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-03"},
		{"Alice Resident", "2026-08-04"},
		{"Unknown Person", "2026-08-05"},
	})
	res, err := svc.StageImport(ctx, data, "preview.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	preview, err := svc.GetBatchPreview(ctx, res.BatchID, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, preview)
	assert.Equal(t, 3, preview.TotalStaged)
	assert.Len(t, preview.StagedRows, 2)
	assert.Equal(t, 3, preview.NewCount)

	preview2, err := svc.GetBatchPreview(ctx, res.BatchID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, preview2.StagedRows, 1)
}

func TestGetBatchPreviewReturnsNilForUnknownBatch(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)

	preview, err := svc.GetBatchPreview(context.Background(), uuid.New(), 1, 10)
	require.NoError(t, err)
	assert.Nil(t, preview)
}

func TestApplyBatchDryRunDoesNotMutateState(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-10"},
	})
	res, err := svc.StageImport(ctx, data, "dryrun.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)

	apply, err := svc.ApplyBatch(ctx, res.BatchID, nil, nil, true, false)
	require.NoError(t, err)
	assert.True(t, apply.Success)
	assert.Equal(t, 1, apply.AppliedCount)

	batch, err := db.ImportBatchRepository().GetByID(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusStaged, batch.Status)
}

func TestApplyBatchCreatesAssignmentsAndEnablesRollback(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-12"},
	})
	res, err := svc.StageImport(ctx, data, "apply.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)

	apply, err := svc.ApplyBatch(ctx, res.BatchID, nil, nil, false, false)
	require.NoError(t, err)
	require.True(t, apply.Success)
	assert.Equal(t, 1, apply.AppliedCount)
	assert.Equal(t, entity.BatchStatusApplied, apply.Status)
	assert.True(t, apply.RollbackAvailable)

	batch, err := db.ImportBatchRepository().GetByID(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusApplied, batch.Status)
}

func TestApplyBatchUpsertUpdatesExistingAssignment(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-15"},
	})
	first, err := svc.StageImport(ctx, data, "first.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	_, err = svc.ApplyBatch(ctx, first.BatchID, nil, nil, false, false)
	require.NoError(t, err)

	second, err := svc.StageImport(ctx, workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-15"},
	}), "second.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)

	applyTwo, err := svc.ApplyBatch(ctx, second.BatchID, nil, nil, false, false)
	require.NoError(t, err)
	assert.True(t, applyTwo.Success)
	assert.Equal(t, 1, applyTwo.AppliedCount)
}

func TestRollbackBatchRemovesCreatedAssignments(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-20"},
	})
	res, err := svc.StageImport(ctx, data, "rollback.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	_, err = svc.ApplyBatch(ctx, res.BatchID, nil, nil, false, false)
	require.NoError(t, err)

	rollback, err := svc.RollbackBatch(ctx, res.BatchID, nil, "operator requested")
	require.NoError(t, err)
	assert.True(t, rollback.Success)
	assert.Equal(t, 1, rollback.RolledBackCount)

	batch, err := db.ImportBatchRepository().GetByID(ctx, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusRolledBack, batch.Status)
}

func TestRejectBatchIsIdempotent(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-25"},
	})
	res, err := svc.StageImport(ctx, data, "reject.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)

	ok, _, err := svc.RejectBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok2, msg, err := svc.RejectBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.True(t, ok2)
	assert.Contains(t, msg, "already rejected")
}

func TestRejectBatchFailsOnAppliedBatch(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-08-28"},
	})
	res, err := svc.StageImport(ctx, data, "applied.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	_, err = svc.ApplyBatch(ctx, res.BatchID, nil, nil, false, false)
	require.NoError(t, err)

	ok, msg, err := svc.RejectBatch(ctx, res.BatchID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "rollback")
}

func TestFuzzyMatchExactAndApproximate(t *testing.T) {
	cache := newNameCache()
	id := uuid.New()
	cache.put("Alice Resident", id)

	gotID, confidence, matched := fuzzyMatch(cache, "alice resident")
	assert.True(t, matched)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 100, confidence)

	_, fuzzyConfidence, fuzzyMatched := fuzzyMatch(cache, "Alice Residnt")
	assert.True(t, fuzzyMatched)
	assert.GreaterOrEqual(t, fuzzyConfidence, FuzzyMatchThreshold)

	_, _, noMatch := fuzzyMatch(cache, "Completely Different Name")
	assert.False(t, noMatch)
}

func TestMetricsTracksStagingAndApplyActivity(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db)
	ctx := context.Background()

	data := workbookBytes(t, []string{"person_name", "assignment_date"}, [][]string{
		{"Alice Resident", "2026-09-01"},
	})
	res, err := svc.StageImport(ctx, data, "metrics.xlsx", nil, entity.ConflictUpsert, "")
	require.NoError(t, err)
	_, err = svc.ApplyBatch(ctx, res.BatchID, nil, nil, false, false)
	require.NoError(t, err)

	m := svc.Metrics()
	assert.Equal(t, 1, m.BatchesStaged)
	assert.Equal(t, 1, m.RowsStaged)
	assert.Equal(t, 1, m.RowsApplied)
	assert.Equal(t, 1.0, m.SuccessRate())
}
