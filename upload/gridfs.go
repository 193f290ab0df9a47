package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFS stores files in a MongoDB GridFS bucket. Folders are kept in the
// file metadata under "folder".
//
// The identifier of a file is derived from its folder and name, so it
// survives replacement. Each upload is stored as a new revision and older
// revisions are deleted only after it completes; a failed upload leaves
// the previous content in place.
type GridFS struct {
	open func(ctx context.Context) (fileBucket, error)
}

// fileBucket is the part of a GridFS bucket the uploader uses.
type fileBucket interface {
	revisions(ctx context.Context, name, folder string) ([]any, error)
	store(name string, r io.Reader, metadata bson.D) (any, error)
	remove(ctx context.Context, id any) error
}

// NewGridFS returns a GridFS uploader over the named bucket of db.
func NewGridFS(db *mongo.Database, bucket string) (*GridFS, error) {
	open := func(ctx context.Context) (fileBucket, error) {
		opts := options.GridFSBucket()
		if bucket != "" {
			opts.SetName(bucket)
		}
		// A bucket carries its write deadline, so every upload gets its own.
		b, err := gridfs.NewBucket(db, opts)
		if err != nil {
			return nil, fmt.Errorf("gridfs bucket: %w", err)
		}
		if deadline, ok := ctx.Deadline(); ok {
			if err := b.SetWriteDeadline(deadline); err != nil {
				return nil, err
			}
		}
		return mongoBucket{b}, nil
	}
	if _, err := open(context.Background()); err != nil {
		return nil, err
	}
	return &GridFS{open: open}, nil
}

// ConnectGridFS dials uri and returns an uploader over bucket in database
// together with the client, which the caller must disconnect.
func ConnectGridFS(ctx context.Context, uri, database, bucket string) (*GridFS, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("pinging mongo: %w", err)
	}
	g, err := NewGridFS(client.Database(database), bucket)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return g, client, nil
}

// FileID returns the identifier GridFS reports for name in folder.
func FileID(name, folder string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("gridfs:"+folder+"\x00"+name)).String()
}

// Upload stores r as name in folder, replacing any earlier revision.
func (g *GridFS) Upload(ctx context.Context, name, folder string, r io.Reader) (string, error) {
	if err := g.upload(ctx, name, folder, r); err != nil {
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			err = Retryable(err)
		}
		return "", &Error{Name: name, Err: err}
	}
	return FileID(name, folder), nil
}

func (g *GridFS) upload(ctx context.Context, name, folder string, r io.Reader) error {
	b, err := g.open(ctx)
	if err != nil {
		return err
	}
	old, err := b.revisions(ctx, name, folder)
	if err != nil {
		return err
	}

	id := FileID(name, folder)
	if _, err := b.store(name, r, bson.D{{Key: "folder", Value: folder}, {Key: "file_id", Value: id}}); err != nil {
		return err
	}
	for _, rev := range old {
		if err := b.remove(ctx, rev); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("removing previous revision: %w", err)
		}
	}
	return nil
}

type mongoBucket struct{ b *gridfs.Bucket }

func (m mongoBucket) revisions(ctx context.Context, name, folder string) ([]any, error) {
	cursor, err := m.b.FindContext(ctx, bson.D{{Key: "filename", Value: name}, {Key: "metadata.folder", Value: folder}})
	if err != nil {
		return nil, err
	}
	var files []struct {
		ID any `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	ids := make([]any, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids, nil
}

func (m mongoBucket) store(name string, r io.Reader, metadata bson.D) (any, error) {
	id, err := m.b.UploadFromStream(name, r, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, err
	}
	return id, nil
}

func (m mongoBucket) remove(ctx context.Context, id any) error {
	return m.b.DeleteContext(ctx, id)
}

var _ Uploader = (*GridFS)(nil)
