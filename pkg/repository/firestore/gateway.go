package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Gateway stores each project as a document and its tasks in a "tasks"
// sub-collection. Task order is kept by a per-project sequence counter.
type Gateway struct {
	client           *firestore.Client
	collectionPrefix string
	databaseID       string
	schema           model.Schema
	now              func() time.Time
}

var _ interfaces.Gateway = &Gateway{}

type Option func(*Gateway)

// WithDatabaseID selects a named database instead of "(default)"
func WithDatabaseID(id string) Option {
	return func(g *Gateway) {
		g.databaseID = id
	}
}

func WithCollectionPrefix(prefix string) Option {
	return func(g *Gateway) {
		g.collectionPrefix = prefix
	}
}

// WithSchema sets the field set new projects start with
func WithSchema(schema model.Schema) Option {
	return func(g *Gateway) {
		g.schema = schema.Clone()
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		schema: model.DefaultFields(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	var client *firestore.Client
	var err error
	if g.databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, g.databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", g.databaseID))
	}
	g.client = client
	return g, nil
}

type projectDoc struct {
	ID          string     `firestore:"id"`
	Name        string     `firestore:"name"`
	Team        string     `firestore:"team"`
	Description string     `firestore:"description"`
	CreatedAt   time.Time  `firestore:"created_at"`
	Fields      []fieldDoc `firestore:"fields"`
	TaskSeq     int64      `firestore:"task_seq"`
}

type fieldDoc struct {
	ID       string      `firestore:"id"`
	Name     string      `firestore:"name"`
	Type     string      `firestore:"type"`
	Options  []optionDoc `firestore:"options"`
	IsMulti  bool        `firestore:"is_multi"`
	IsSystem bool        `firestore:"is_system"`
}

type optionDoc struct {
	ID    string `firestore:"id"`
	Label string `firestore:"label"`
	Color string `firestore:"color"`
}

type taskDoc struct {
	ID     string                 `firestore:"id"`
	Seq    int64                  `firestore:"seq"`
	Values map[string]interface{} `firestore:"values"`
}

func (g *Gateway) projectsCollection() string {
	if g.collectionPrefix != "" {
		return g.collectionPrefix + "_projects"
	}
	return "projects"
}

func (g *Gateway) projectRef(id types.ProjectID) *firestore.DocumentRef {
	return g.client.Collection(g.projectsCollection()).Doc(id.String())
}

func (g *Gateway) tasksRef(id types.ProjectID) *firestore.CollectionRef {
	return g.projectRef(id).Collection("tasks")
}

func toFieldDocs(schema model.Schema) []fieldDoc {
	docs := make([]fieldDoc, len(schema))
	for i, f := range schema {
		docs[i] = fieldDoc{
			ID:       f.ID.String(),
			Name:     f.Name,
			Type:     f.Type.String(),
			IsMulti:  f.IsMulti,
			IsSystem: f.IsSystem,
		}
		for _, o := range f.Options {
			docs[i].Options = append(docs[i].Options, optionDoc{
				ID:    o.ID.String(),
				Label: o.Label,
				Color: o.Color.String(),
			})
		}
	}
	return docs
}

func fromFieldDocs(docs []fieldDoc) model.Schema {
	schema := make(model.Schema, len(docs))
	for i, d := range docs {
		f := &model.FieldDefinition{
			ID:       types.FieldID(d.ID),
			Name:     d.Name,
			Type:     types.FieldType(d.Type),
			IsMulti:  d.IsMulti,
			IsSystem: d.IsSystem,
		}
		for _, o := range d.Options {
			f.Options = append(f.Options, model.FieldOption{
				ID:    types.OptionID(o.ID),
				Label: o.Label,
				Color: types.Color(o.Color),
			})
		}
		schema[i] = f
	}
	return schema
}

// toValues converts task values to Firestore native values through their JSON form
func toValues(values map[types.FieldID]model.Value) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode task value", goerr.V(model.FieldIDKey, k))
		}
		var native interface{}
		if err := json.Unmarshal(raw, &native); err != nil {
			return nil, goerr.Wrap(err, "failed to convert task value", goerr.V(model.FieldIDKey, k))
		}
		out[k.String()] = native
	}
	return out, nil
}

func fromValues(values map[string]interface{}) (map[types.FieldID]model.Value, error) {
	out := make(map[types.FieldID]model.Value, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert stored value", goerr.V(model.FieldIDKey, k))
		}
		out[types.FieldID(k)] = model.RawValue(raw)
	}
	return out, nil
}

func (g *Gateway) decodeProject(ctx context.Context, snap *firestore.DocumentSnapshot) (*model.Project, error) {
	var doc projectDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode project", goerr.V("doc_id", snap.Ref.ID))
	}

	project := &model.Project{
		ID:          types.ProjectID(doc.ID),
		Name:        doc.Name,
		Team:        doc.Team,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		Fields:      fromFieldDocs(doc.Fields),
	}

	tasks, err := g.loadTasks(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Tasks = tasks
	project.Bind()
	return project, nil
}

func (g *Gateway) loadTasks(ctx context.Context, projectID types.ProjectID) ([]*model.Task, error) {
	iter := g.tasksRef(projectID).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	tasks := []*model.Task{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V(model.ProjectIDKey, projectID))
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", snap.Ref.ID))
		}
		values, err := fromValues(doc.Values)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode task values", goerr.V(model.TaskIDKey, doc.ID))
		}
		tasks = append(tasks, &model.Task{ID: types.TaskID(doc.ID), Values: values})
	}
	return tasks, nil
}

func (g *Gateway) ListProjects(ctx context.Context) ([]*model.Project, error) {
	iter := g.client.Collection(g.projectsCollection()).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var snaps []*firestore.DocumentSnapshot
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects")
		}
		snaps = append(snaps, snap)
	}

	projects := make([]*model.Project, len(snaps))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i, snap := range snaps {
		eg.Go(func() error {
			p, err := g.decodeProject(ctx, snap)
			if err != nil {
				return err
			}
			projects[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to load projects")
	}
	return projects, nil
}

func (g *Gateway) GetProject(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	snap, err := g.projectRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}
	return g.decodeProject(ctx, snap)
}

func (g *Gateway) CreateProject(ctx context.Context, name, team, description string) (*model.Project, error) {
	project := model.NewProject(name, team, description, g.schema, g.now())

	doc := &projectDoc{
		ID:          project.ID.String(),
		Name:        project.Name,
		Team:        project.Team,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		Fields:      toFieldDocs(project.Fields),
	}
	if _, err := g.projectRef(project.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create project", goerr.V(model.ProjectIDKey, project.ID))
	}
	return project, nil
}

func (g *Gateway) DeleteProject(ctx context.Context, id types.ProjectID) error {
	iter := g.tasksRef(id).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate tasks", goerr.V(model.ProjectIDKey, id))
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete task", goerr.V(model.ProjectIDKey, id), goerr.V("doc_id", snap.Ref.ID))
		}
	}

	// Deleting a missing document succeeds
	if _, err := g.projectRef(id).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V(model.ProjectIDKey, id))
	}
	return nil
}

func (g *Gateway) AddTask(ctx context.Context, projectID types.ProjectID, task *model.Task) error {
	if task == nil || task.ID == "" {
		return goerr.Wrap(interfaces.ErrTaskIDRequired, "cannot add task", goerr.V(model.ProjectIDKey, projectID))
	}
	values, err := toValues(task.Values)
	if err != nil {
		return goerr.Wrap(err, "failed to encode task", goerr.V(model.TaskIDKey, task.ID))
	}

	projectRef := g.projectRef(projectID)
	taskRef := g.tasksRef(projectID).Doc(task.ID.String())

	err = g.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		projectSnap, err := tx.Get(projectRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return goerr.Wrap(err, "failed to get project")
		}

		if _, err := tx.Get(taskRef); err == nil {
			return goerr.Wrap(interfaces.ErrDuplicateTask, "cannot add task")
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check task existence")
		}

		seqValue, err := projectSnap.DataAt("task_seq")
		if err != nil {
			return goerr.Wrap(err, "failed to get task sequence")
		}
		seq, ok := seqValue.(int64)
		if !ok {
			return goerr.New("task sequence is not of type int64", goerr.V("value", seqValue))
		}
		seq++

		if err := tx.Update(projectRef, []firestore.Update{{Path: "task_seq", Value: seq}}); err != nil {
			return err
		}
		return tx.Set(taskRef, &taskDoc{ID: task.ID.String(), Seq: seq, Values: values})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to add task",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.TaskIDKey, task.ID))
	}
	return nil
}

func (g *Gateway) UpdateTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID, patch model.TaskPatch) error {
	taskRef := g.tasksRef(projectID).Doc(taskID.String())

	set := make(model.TaskPatch, len(patch))
	var updates []firestore.Update
	for k, v := range patch {
		if v == nil {
			updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"values", k.String()}, Value: firestore.Delete})
			continue
		}
		set[k] = v
	}
	values, err := toValues(set)
	if err != nil {
		return goerr.Wrap(err, "failed to encode task patch", goerr.V(model.TaskIDKey, taskID))
	}
	for k, v := range values {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"values", k}, Value: v})
	}
	if len(updates) == 0 {
		return nil
	}

	// Update fails with NotFound when the task (or its project) is absent
	if _, err := taskRef.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to update task",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.TaskIDKey, taskID))
	}
	return nil
}

func (g *Gateway) DeleteTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID) error {
	if _, err := g.tasksRef(projectID).Doc(taskID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete task",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.TaskIDKey, taskID))
	}
	return nil
}

func (g *Gateway) UpdateField(ctx context.Context, projectID types.ProjectID, fieldID types.FieldID, patch model.FieldPatch) error {
	projectRef := g.projectRef(projectID)

	err := g.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(projectRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return goerr.Wrap(err, "failed to get project")
		}

		var doc projectDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode project")
		}
		schema := fromFieldDocs(doc.Fields)
		field := schema.Field(fieldID)
		if field == nil {
			return nil
		}
		patch.Apply(field)

		return tx.Update(projectRef, []firestore.Update{{Path: "fields", Value: toFieldDocs(schema)}})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update field",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.FieldIDKey, fieldID))
	}
	return nil
}

func (g *Gateway) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
