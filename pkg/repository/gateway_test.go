package repository_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/flexigantt/pkg/controller/http"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/repository/blobstore"
	"github.com/secmon-lab/flexigantt/pkg/repository/firestore"
	"github.com/secmon-lab/flexigantt/pkg/repository/local"
	"github.com/secmon-lab/flexigantt/pkg/repository/memory"
	"github.com/secmon-lab/flexigantt/pkg/repository/remote"
)

func newTask(name string, status types.OptionID) *model.Task {
	task := model.NewTask()
	task.Values[types.NameFieldID] = model.TextValue(name)
	task.Values[types.OwnerFieldID] = model.Multi("u1")
	task.Values[types.StatusFieldID] = model.Single(status)
	task.Values[types.StartFieldID] = model.DateValue("2023-10-01")
	task.Values[types.EndFieldID] = model.DateValue("2023-10-05")
	return task
}

func runGatewayTest(t *testing.T, newGateway func(t *testing.T) interfaces.Gateway) {
	t.Helper()

	t.Run("CreateProject then GetProject returns defaults and no tasks", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "A", "Team", "d")
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual(types.ProjectID(""))
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil().Required()
		gt.Value(t, got.Name).Equal("A")
		gt.Value(t, got.Team).Equal("Team")
		gt.Value(t, got.Description).Equal("d")
		gt.Value(t, got.Fields).Equal(model.DefaultFields())
		gt.Array(t, got.Tasks).Length(0)
	})

	t.Run("blank team becomes General", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "B", "", "")
		gt.NoError(t, err).Required()

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Team).Equal(model.DefaultTeam)
	})

	t.Run("GetProject returns nil for unknown ID", func(t *testing.T) {
		gw := newGateway(t)

		got, err := gw.GetProject(context.Background(), types.NewProjectID())
		gt.NoError(t, err)
		gt.Value(t, got).Nil()
	})

	t.Run("DeleteProject removes the project and is idempotent", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "C", "Team", "")
		gt.NoError(t, err).Required()
		gt.NoError(t, gw.AddTask(ctx, created.ID, newTask("x", "opt_todo"))).Required()

		gt.NoError(t, gw.DeleteProject(ctx, created.ID)).Required()
		gt.NoError(t, gw.DeleteProject(ctx, created.ID))

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err)
		gt.Value(t, got).Nil()

		projects, err := gw.ListProjects(ctx)
		gt.NoError(t, err).Required()
		for _, p := range projects {
			gt.Value(t, p.ID).NotEqual(created.ID)
		}
	})

	t.Run("tasks keep insertion order", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "D", "Team", "")
		gt.NoError(t, err).Required()

		t1 := newTask("first", "opt_todo")
		t2 := newTask("second", "opt_done")
		t3 := newTask("third", "opt_progress")
		for _, task := range []*model.Task{t1, t2, t3} {
			gt.NoError(t, gw.AddTask(ctx, created.ID, task)).Required()
		}

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Tasks).Length(3).Required()
		gt.Value(t, got.Tasks[0].ID).Equal(t1.ID)
		gt.Value(t, got.Tasks[1].ID).Equal(t2.ID)
		gt.Value(t, got.Tasks[2].ID).Equal(t3.ID)
		gt.Value(t, got.Tasks[1]).Equal(t2)
	})

	t.Run("AddTask rejects missing and duplicate IDs", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "E", "Team", "")
		gt.NoError(t, err).Required()

		task := newTask("dup", "opt_todo")
		gt.NoError(t, gw.AddTask(ctx, created.ID, task)).Required()
		gt.Error(t, gw.AddTask(ctx, created.ID, task)).Is(interfaces.ErrDuplicateTask)
		gt.Error(t, gw.AddTask(ctx, created.ID, &model.Task{})).Is(interfaces.ErrTaskIDRequired)
	})

	t.Run("AddTask to an unknown project is a no-op", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		id := types.NewProjectID()
		gt.NoError(t, gw.AddTask(ctx, id, newTask("orphan", "opt_todo")))

		got, err := gw.GetProject(ctx, id)
		gt.NoError(t, err)
		gt.Value(t, got).Nil()
	})

	t.Run("UpdateTask merges and leaves other fields unchanged", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "F", "Team", "")
		gt.NoError(t, err).Required()
		task := newTask("merge", "opt_todo")
		gt.NoError(t, gw.AddTask(ctx, created.ID, task)).Required()

		gt.NoError(t, gw.UpdateTask(ctx, created.ID, task.ID, model.TaskPatch{
			types.StatusFieldID: model.Single("opt_done"),
		})).Required()

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		updated := got.Task(task.ID)
		gt.Value(t, updated).NotNil().Required()
		gt.Value(t, updated.Get(types.StatusFieldID)).Equal(model.Single("opt_done"))
		for _, id := range []types.FieldID{types.NameFieldID, types.OwnerFieldID, types.StartFieldID, types.EndFieldID} {
			gt.Value(t, updated.Get(id)).Equal(task.Get(id))
		}
	})

	t.Run("UpdateTask with null clears the field", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "G", "Team", "")
		gt.NoError(t, err).Required()
		task := newTask("clear", "opt_todo")
		gt.NoError(t, gw.AddTask(ctx, created.ID, task)).Required()

		gt.NoError(t, gw.UpdateTask(ctx, created.ID, task.ID, model.TaskPatch{types.EndFieldID: nil})).Required()

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Task(task.ID).Get(types.EndFieldID)).Nil()
		gt.Value(t, got.Task(task.ID).Get(types.StartFieldID)).Equal(model.Value(model.DateValue("2023-10-01")))
	})

	t.Run("UpdateTask on unknown task is a no-op", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "H", "Team", "")
		gt.NoError(t, err).Required()

		gt.NoError(t, gw.UpdateTask(ctx, created.ID, types.NewTaskID(), model.TaskPatch{
			types.StatusFieldID: model.Single("opt_done"),
		}))
		gt.NoError(t, gw.UpdateTask(ctx, types.NewProjectID(), types.NewTaskID(), model.TaskPatch{
			types.StatusFieldID: model.Single("opt_done"),
		}))

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Tasks).Length(0)
	})

	t.Run("DeleteTask is idempotent", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "I", "Team", "")
		gt.NoError(t, err).Required()
		keep := newTask("keep", "opt_todo")
		drop := newTask("drop", "opt_todo")
		gt.NoError(t, gw.AddTask(ctx, created.ID, keep)).Required()
		gt.NoError(t, gw.AddTask(ctx, created.ID, drop)).Required()

		gt.NoError(t, gw.DeleteTask(ctx, created.ID, drop.ID)).Required()
		gt.NoError(t, gw.DeleteTask(ctx, created.ID, drop.ID))

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Tasks).Length(1).Required()
		gt.Value(t, got.Tasks[0].ID).Equal(keep.ID)
	})

	t.Run("UpdateField replaces options of one project only", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		a, err := gw.CreateProject(ctx, "J", "Team", "")
		gt.NoError(t, err).Required()
		b, err := gw.CreateProject(ctx, "K", "Team", "")
		gt.NoError(t, err).Required()

		options := []model.FieldOption{{ID: "opt_blocked", Label: "Blocked", Color: "#ef4444"}}
		gt.NoError(t, gw.UpdateField(ctx, a.ID, types.StatusFieldID, model.OptionsPatch(options))).Required()

		gotA, err := gw.GetProject(ctx, a.ID)
		gt.NoError(t, err).Required()
		status := gotA.Field(types.StatusFieldID)
		gt.Array(t, status.Options).Length(1).Required()
		gt.Value(t, status.Options[0]).Equal(options[0])
		gt.Value(t, status.Name).Equal("Status")

		gotB, err := gw.GetProject(ctx, b.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, gotB.Field(types.StatusFieldID).Options).Length(3)
	})

	t.Run("returned projects are copies", func(t *testing.T) {
		gw := newGateway(t)
		ctx := context.Background()

		created, err := gw.CreateProject(ctx, "L", "Team", "")
		gt.NoError(t, err).Required()

		got, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		got.Name = "changed"
		got.Fields[0].Name = "changed"

		again, err := gw.GetProject(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Name).Equal("L")
		gt.Value(t, again.Fields[0].Name).Equal("Task Name")
	})
}

func TestGateway_Memory(t *testing.T) {
	runGatewayTest(t, func(t *testing.T) interfaces.Gateway {
		return memory.New()
	})
}

func TestGateway_LocalMemoryBlob(t *testing.T) {
	runGatewayTest(t, func(t *testing.T) interfaces.Gateway {
		gw, err := local.New(context.Background(), blobstore.NewMemory())
		gt.NoError(t, err).Required()
		return gw
	})
}

func TestGateway_LocalSQLite(t *testing.T) {
	runGatewayTest(t, func(t *testing.T) interfaces.Gateway {
		ctx := context.Background()
		store, err := blobstore.NewSQLite(ctx, filepath.Join(t.TempDir(), "flexigantt.db"))
		gt.NoError(t, err).Required()

		gw, err := local.New(ctx, store)
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = gw.Close() })
		return gw
	})
}

func TestGateway_Remote(t *testing.T) {
	runGatewayTest(t, func(t *testing.T) interfaces.Gateway {
		srv, err := httpctrl.New(httpctrl.WithAPI(memory.New()))
		gt.NoError(t, err).Required()
		ts := httptest.NewServer(srv)
		t.Cleanup(ts.Close)

		gw, err := remote.New(ts.URL + "/api")
		gt.NoError(t, err).Required()
		return gw
	})
}

func TestGateway_Firestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	runGatewayTest(t, func(t *testing.T) interfaces.Gateway {
		prefix := "test_" + types.NewProjectID().String()[:8]
		gw, err := firestore.New(context.Background(), projectID, firestore.WithCollectionPrefix(prefix))
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = gw.Close() })
		return gw
	})
}
