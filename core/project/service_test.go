package project_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/scorecard/core"
	"github.com/trezcool/scorecard/core/personnel"
	"github.com/trezcool/scorecard/core/project"
	"github.com/trezcool/scorecard/core/scoring"
	"github.com/trezcool/scorecard/core/user"
	"github.com/trezcool/scorecard/storage/database/inmem"
	"github.com/trezcool/scorecard/tests"
)

type fixture struct {
	projSvc  project.Service
	persSvc  personnel.Service
	tableSvc scoring.Service
	usrRepo  user.Repository
}

func setup(t *testing.T) fixture {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	tableSvc := scoring.NewService(inmemdb.NewScoringRepository(db))
	return fixture{
		projSvc:  project.NewService(inmemdb.NewProjectRepository(db), tableSvc),
		persSvc:  personnel.NewService(inmemdb.NewPersonnelRepository(db)),
		tableSvc: tableSvc,
		usrRepo:  inmemdb.NewUserRepository(db),
	}
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice", "alice@test.cd", "", "", true)

	p := testutil.CreateProject(t, f.projSvc, alice, "Widget refresh", testutil.CMFSelections(1.0, "Alice", 2))

	assert.Equal(t, "P0001", p.ID)
	assert.Equal(t, "Series 3 - CMF", p.Kind)
	assert.Equal(t, "Series 3 - CMF", p.Content)
	assert.Equal(t, 1.0, p.Score)
	assert.Equal(t, "Alice", p.ResponsiblePerson)
	assert.Equal(t, project.StatusInProgress, p.Status)
	assert.Equal(t, alice.ID, p.CreatedBy)
	assert.Equal(t, alice.Username, p.CreatorName)
	assert.NotEmpty(t, p.EntryTime)

	// ids are allocated sequentially
	p2 := testutil.CreateProject(t, f.projSvc, alice, "Another", testutil.CMFSelections(0.5, "", 1))
	assert.Equal(t, "P0002", p2.ID)

	// a personnel entry was materialized per credit
	entries, err := f.persSvc.QueryByProject(ctx, alice, p.ID)
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "Alice", entries[0].Person)
		assert.Equal(t, 1.0, entries[0].Score)
		assert.Equal(t, 2.0, entries[0].WorkDays)
		assert.Equal(t, alice.ID, entries[0].CreatedBy)
		assert.Equal(t, p.EntryTime, entries[0].EntryTime)
	}
}

// collidingRepo simulates a racing writer: the first few creates fail with
// ErrIDTaken and every id allocation hands out a fresh one.
type collidingRepo struct {
	project.Repository
	failures int
	attempts int
	nextID   int
	seenIDs  []string
}

func (r *collidingRepo) NextProjectID(ctx context.Context) (string, error) {
	r.nextID++
	return fmt.Sprintf("P%04d", r.nextID), nil
}

func (r *collidingRepo) CreateProjectWithEntries(ctx context.Context, p project.Project, entries []personnel.Entry) (project.Project, error) {
	r.attempts++
	r.seenIDs = append(r.seenIDs, p.ID)
	if r.attempts <= r.failures {
		return project.Project{}, project.ErrIDTaken
	}
	return r.Repository.CreateProjectWithEntries(ctx, p, entries)
}

func TestService_CreateRetriesTakenIDs(t *testing.T) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	tableSvc := scoring.NewService(inmemdb.NewScoringRepository(db))
	repo := &collidingRepo{Repository: inmemdb.NewProjectRepository(db), failures: 2}
	svc := project.NewService(repo, tableSvc)
	ctx := context.Background()
	alice := user.User{ID: "1", Username: "alice", Role: user.RoleStandard}

	p, err := svc.Create(ctx, alice, project.NewProject{
		Name:       "Widget refresh",
		Selections: testutil.CMFSelections(1.0, "Alice", 1),
	})
	assert.NoError(t, err)

	// each collision was retried with a freshly allocated id
	assert.Equal(t, 3, repo.attempts)
	assert.Equal(t, []string{"P0001", "P0002", "P0003"}, repo.seenIDs)
	assert.Equal(t, "P0003", p.ID)

	// a persistent collision is surfaced as a terminal failure
	repo.attempts, repo.failures, repo.seenIDs = 0, 1000, nil
	_, err = svc.Create(ctx, alice, project.NewProject{
		Name:       "Never lands",
		Selections: testutil.CMFSelections(1.0, "Alice", 1),
	})
	assert.Equal(t, project.ErrIDTaken, errors.Cause(err))
	assert.Less(t, repo.attempts, 1000)
}

func TestService_QueryVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, true)
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice", "alice@test.cd", "", "", true)
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "bob", "bob@test.cd", "", "", true)

	pa := testutil.CreateProject(t, f.projSvc, alice, "Alice's", testutil.CMFSelections(1.0, "Alice", 1))
	pb := testutil.CreateProject(t, f.projSvc, bob, "Bob's", testutil.CMFSelections(0.5, "Bob", 1))

	// admin sees all
	all, err := f.projSvc.Query(ctx, admin, nil)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	// standard users only see their own
	mine, err := f.projSvc.Query(ctx, alice, nil)
	assert.NoError(t, err)
	if assert.Len(t, mine, 1) {
		assert.Equal(t, pa.ID, mine[0].ID)
	}

	// direct access to someone else's record is denied
	_, err = f.projSvc.GetByID(ctx, alice, pb.ID)
	assert.Equal(t, core.ErrPermissionDenied, err)
	got, err := f.projSvc.GetByID(ctx, admin, pb.ID)
	assert.NoError(t, err)
	assert.Equal(t, pb.ID, got.ID)

	// search filter
	found, err := f.projSvc.Query(ctx, admin, &project.QueryFilter{Search: "bob"})
	assert.NoError(t, err)
	if assert.Len(t, found, 1) {
		assert.Equal(t, pb.ID, found[0].ID)
	}
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice", "alice@test.cd", "", "", true)
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "bob", "bob@test.cd", "", "", true)

	p := testutil.CreateProject(t, f.projSvc, alice, "Widget refresh", testutil.CMFSelections(1.0, "Alice", 2))

	up := project.UpdateProject{
		Name: "Widget refresh v2",
		Selections: scoring.Selections{
			Design: &scoring.DesignSelection{
				Variant: scoring.DesignCMFP,
				CMFP: &scoring.CMFPSelection{
					Mode:            scoring.ModeWithSupport,
					MainPerson:      "Alice",
					MainWorkDays:    3,
					SupportPerson:   "Bob",
					SupportWorkDays: 1,
				},
			},
		},
	}

	// non-owner cannot update
	_, err := f.projSvc.Update(ctx, bob, p.ID, up)
	assert.Equal(t, core.ErrPermissionDenied, err)

	got, err := f.projSvc.Update(ctx, alice, p.ID, up)
	assert.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Widget refresh v2", got.Name)
	assert.Equal(t, "Series 3 - CMFP", got.Kind)
	assert.Equal(t, 1.5, got.Score)

	// the entry set was fully replaced
	entries, err := f.persSvc.QueryByProject(ctx, alice, p.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	// completion blocks further edits
	_, err = f.projSvc.SetStatus(ctx, alice, p.ID, project.StatusCompleted)
	assert.NoError(t, err)
	_, err = f.projSvc.Update(ctx, alice, p.ID, up)
	assert.Equal(t, project.ErrCompletedImmutable, err)

	// the status toggle stays reversible
	got, err = f.projSvc.SetStatus(ctx, alice, p.ID, project.StatusInProgress)
	assert.NoError(t, err)
	assert.Equal(t, project.StatusInProgress, got.Status)
	_, err = f.projSvc.Update(ctx, alice, p.ID, up)
	assert.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, true)
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice", "alice@test.cd", "", "", true)
	bob := testutil.CreateUser(t, f.usrRepo, "Bob", "bob", "bob@test.cd", "", "", true)

	pa := testutil.CreateProject(t, f.projSvc, alice, "Alice's", testutil.CMFSelections(1.0, "Alice", 1))
	pb := testutil.CreateProject(t, f.projSvc, bob, "Bob's", testutil.CMFSelections(0.5, "Bob", 1))

	// a mixed-ownership batch is rejected as a whole: nothing is deleted
	err := f.projSvc.Delete(ctx, alice, pa.ID, pb.ID)
	assert.Equal(t, core.ErrPermissionDenied, err)
	_, err = f.projSvc.GetByID(ctx, alice, pa.ID)
	assert.NoError(t, err)

	// completed projects remain deletable
	_, err = f.projSvc.SetStatus(ctx, alice, pa.ID, project.StatusCompleted)
	assert.NoError(t, err)
	assert.NoError(t, f.projSvc.Delete(ctx, alice, pa.ID))
	_, err = f.projSvc.GetByID(ctx, alice, pa.ID)
	assert.Equal(t, project.ErrNotFound, err)

	// deletion cascades to the personnel entries
	entries, err := f.persSvc.Query(ctx, admin, &personnel.QueryFilter{ProjectID: pa.ID})
	assert.NoError(t, err)
	assert.Empty(t, entries)

	assert.NoError(t, f.projSvc.Delete(ctx, admin, pb.ID))
}

func TestService_BatchDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.usrRepo, "Alice", "alice", "alice@test.cd", "", "", true)

	p1 := testutil.CreateProject(t, f.projSvc, alice, "First", testutil.CMFSelections(1.0, "Alice", 1))
	p2 := testutil.CreateProject(t, f.projSvc, alice, "Second", testutil.CMFSelections(0.5, "Bob", 1))
	kept := testutil.CreateProject(t, f.projSvc, alice, "Kept", testutil.CMFSelections(1.0, "Chen", 1))

	assert.NoError(t, f.projSvc.Delete(ctx, alice, p1.ID, p2.ID))

	// both projects and exactly the union of their entries are gone
	_, err := f.projSvc.GetByID(ctx, alice, p1.ID)
	assert.Equal(t, project.ErrNotFound, err)
	_, err = f.projSvc.GetByID(ctx, alice, p2.ID)
	assert.Equal(t, project.ErrNotFound, err)

	entries, err := f.persSvc.Query(ctx, alice, nil)
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, kept.ID, entries[0].ProjectID)
		assert.Equal(t, "Chen", entries[0].Person)
	}
}

func TestService_ResyncScores(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, true)

	p := testutil.CreateProject(t, f.projSvc, admin, "Widget refresh", testutil.CMFSelections(1.0, "Alice", 2))
	assert.Equal(t, 1.0, p.Score)

	// bump the CMFP split, record a project under the new rules
	table, err := f.tableSvc.Get(ctx)
	assert.NoError(t, err)
	table.CMFPModes = []scoring.CMFPMode{{Mode: scoring.ModeWithSupport, Main: 2.0, Support: 1.0}}
	_, err = f.tableSvc.Update(ctx, admin, table)
	assert.NoError(t, err)

	pc := testutil.CreateProject(t, f.projSvc, admin, "CMFP one", scoring.Selections{
		Design: &scoring.DesignSelection{
			Variant: scoring.DesignCMFP,
			CMFP:    &scoring.CMFPSelection{Mode: scoring.ModeWithSupport, MainWorkDays: 1},
		},
	})
	assert.Equal(t, 3.0, pc.Score)

	// revert the table and resync: all stored scores follow
	table.CMFPModes = scoring.DefaultTable().CMFPModes
	_, err = f.tableSvc.Update(ctx, admin, table)
	assert.NoError(t, err)
	assert.NoError(t, f.projSvc.ResyncScores(ctx))

	got, err := f.projSvc.GetByID(ctx, admin, pc.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1.5, got.Score)

	// resync is idempotent
	assert.NoError(t, f.projSvc.ResyncScores(ctx))
	again, err := f.projSvc.GetByID(ctx, admin, pc.ID)
	assert.NoError(t, err)
	assert.Equal(t, got.Score, again.Score)

	// untouched rules leave untouched scores
	gotP, err := f.projSvc.GetByID(ctx, admin, p.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, gotP.Score)
}

func TestService_Preview(t *testing.T) {
	f := setup(t)

	res, err := f.projSvc.Preview(context.Background(), testutil.CMFSelections(0.5, "Alice", 1))
	assert.NoError(t, err)
	assert.Equal(t, 0.5, res.Total)
	assert.Len(t, res.Credits, 1)
}
