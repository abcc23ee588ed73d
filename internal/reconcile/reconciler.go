package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/regsync/internal/artifact"
	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/dmitrijs2005/regsync/internal/logging"
	"github.com/dmitrijs2005/regsync/internal/registry"
	"github.com/google/uuid"
)

// Files is the local filesystem.
type Files interface {
	Exists(ctx context.Context, path string) (bool, error)
	Copy(ctx context.Context, src, dst string) error
	Remove(ctx context.Context, path string) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	WriteFileAtomic(ctx context.Context, path string, data []byte) error
}

// Artifacts opens and creates the SQLite artifact.
type Artifacts interface {
	Open(ctx context.Context, path string) (*artifact.Artifact, error)
	Create(ctx context.Context, path string) (*artifact.Artifact, error)
}

// Remote is the object store.
type Remote interface {
	FindBucketByPrefix(ctx context.Context, prefix string) (string, error)
	BucketExists(ctx context.Context, name string) (bool, error)
	CreateBucket(ctx context.Context, prefix string) (string, error)
	EnsureTagged(ctx context.Context, bucket string) error
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Keys hands out the artifact encryption key.
type Keys interface {
	GetOrCreateKey(ctx context.Context, name string) (string, error)
	Key(ctx context.Context, name string) (string, error)
}

// Cipher encrypts the pushed copy and decrypts the pulled object.
type Cipher interface {
	Encrypt(plaintext []byte, key string) ([]byte, error)
	Decrypt(ciphertext []byte, key string) ([]byte, error)
}

// Config names the artifact and the remote resources it is paired with.
type Config struct {
	ArtifactPath string
	// ObjectKey defaults to the base name of ArtifactPath.
	ObjectKey string
	// TempSuffix is appended to ArtifactPath for the encrypted twin.
	TempSuffix   string
	BucketPrefix string
	SecretName   string
}

// Deps are the collaborators a Reconciler drives.
type Deps struct {
	Files     Files
	Artifacts Artifacts
	Remote    Remote
	Keys      Keys
	Cipher    Cipher
	Log       logging.Logger
}

// Reconciler converges the local artifact, the project bucket and the
// remote object.
type Reconciler struct {
	cfg       Config
	files     Files
	artifacts Artifacts
	remote    Remote
	keys      Keys
	cipher    Cipher
	log       logging.Logger
}

// New fills in the Config defaults and returns a Reconciler over d.
func New(cfg Config, d Deps) *Reconciler {
	if cfg.ObjectKey == "" {
		cfg.ObjectKey = filepath.Base(cfg.ArtifactPath)
	}
	if cfg.TempSuffix == "" {
		cfg.TempSuffix = "_copy"
	}
	return &Reconciler{
		cfg:       cfg,
		files:     d.Files,
		artifacts: d.Artifacts,
		remote:    d.Remote,
		keys:      d.Keys,
		cipher:    d.Cipher,
		log:       d.Log,
	}
}

// Action is what a reconciliation did.
type Action string

const (
	ActionNone               Action = "none"
	ActionPush               Action = "push"
	ActionCreateBucketPush   Action = "create-bucket-push"
	ActionPull               Action = "pull"
	ActionCreateArtifactPush Action = "create-artifact-push"
	ActionBootstrap          Action = "bootstrap"
)

// State is the classified world before any action.
type State struct {
	Local  bool
	Bucket bool
	// Remote is meaningful only when Bucket is true.
	Remote     bool
	BucketName string
}

func (s State) String() string {
	if !s.Bucket {
		return fmt.Sprintf("L=%s B=F R=-", tf(s.Local))
	}
	return fmt.Sprintf("L=%s B=T R=%s", tf(s.Local), tf(s.Remote))
}

func tf(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

type Options struct {
	// Force pushes even when the remote object is already present.
	Force bool
}

// Result describes the converged state. The caller owns Artifact and must
// close it.
type Result struct {
	BucketName string
	Artifact   *artifact.Artifact
	Action     Action
	State      State
}

// Probe classifies the current state without changing anything.
func (r *Reconciler) Probe(ctx context.Context) (State, error) {
	var st State

	local, err := r.files.Exists(ctx, r.cfg.ArtifactPath)
	if err != nil {
		return st, stepErr(StepProbe, err)
	}
	st.Local = local

	bucket, err := r.remote.FindBucketByPrefix(ctx, r.cfg.BucketPrefix)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return st, nil
	case err != nil:
		return st, stepErr(StepProbe, err)
	}
	st.Bucket = true
	st.BucketName = bucket

	remote, err := r.remote.ObjectExists(ctx, bucket, r.cfg.ObjectKey)
	if err != nil {
		return st, stepErr(StepProbe, err)
	}
	st.Remote = remote
	return st, nil
}

// Reconcile probes the world and converges it: afterwards the local
// artifact exists, it records the one project bucket, and that bucket
// holds the encrypted artifact.
func (r *Reconciler) Reconcile(ctx context.Context, opts Options) (*Result, error) {
	rc := &run{Reconciler: r, log: r.log.With("run_id", uuid.NewString())}

	st, err := r.Probe(ctx)
	if err != nil {
		return nil, err
	}
	rc.log.Info(ctx, "state probed", "state", st.String(), "bucket", st.BucketName)

	if st.Bucket {
		if err := r.remote.EnsureTagged(ctx, st.BucketName); err != nil {
			err = stepErr(StepTagBucket, err)
			rc.log.Error(ctx, "reconciliation failed", "state", st.String(), "error", err)
			return nil, err
		}
	}

	var res *Result
	switch {
	case st.Local && !st.Bucket:
		res, err = rc.localOnly(ctx)
	case st.Local:
		res, err = rc.localWithBucket(ctx, st, opts)
	case st.Bucket && st.Remote:
		res, err = rc.pull(ctx, st.BucketName)
	case st.Bucket:
		res, err = rc.createArtifact(ctx, st.BucketName, ActionCreateArtifactPush)
	default:
		res, err = rc.bootstrap(ctx)
	}
	if err != nil {
		rc.log.Error(ctx, "reconciliation failed", "state", st.String(), "error", err)
		return nil, err
	}

	res.State = st
	rc.log.Info(ctx, "reconciled", "action", string(res.Action), "bucket", res.BucketName)
	return res, nil
}

// run carries the per-call logger.
type run struct {
	*Reconciler
	log logging.Logger
}

// localOnly handles a local artifact with no discoverable bucket. A
// registry entry naming a bucket that still exists means the remote side
// no longer matches the prefix; that is left to an operator.
func (r *run) localOnly(ctx context.Context) (*Result, error) {
	a, err := r.artifacts.Open(ctx, r.cfg.ArtifactPath)
	if err != nil {
		return nil, stepErr(StepOpenArtifact, err)
	}

	return r.withArtifact(ctx, a, func(reg *registry.Registry) (*Result, error) {
		recorded, err := reg.Get(ctx, registry.ResourceS3)
		switch {
		case errors.Is(err, common.ErrNotFound):
		case err != nil:
			return nil, stepErr(StepRegister, err)
		default:
			exists, err := r.remote.BucketExists(ctx, recorded)
			if err != nil {
				return nil, stepErr(StepProbe, err)
			}
			if exists {
				return nil, stepErr(StepProbe, fmt.Errorf(
					"%w: registry names bucket %s which exists but does not match prefix %q",
					common.ErrAmbiguousState, recorded, r.cfg.BucketPrefix))
			}
			r.log.Warn(ctx, "registered bucket is gone, creating a new one", "stale_bucket", recorded)
		}

		bucket, err := r.remote.CreateBucket(ctx, r.cfg.BucketPrefix)
		if err != nil {
			return nil, stepErr(StepCreateBucket, err)
		}
		if _, err := reg.Put(ctx, registry.ResourceS3, bucket); err != nil {
			return nil, stepErr(StepRegister, err)
		}
		if err := r.push(ctx, bucket); err != nil {
			return nil, err
		}
		return &Result{BucketName: bucket, Action: ActionCreateBucketPush}, nil
	})
}

func (r *run) localWithBucket(ctx context.Context, st State, opts Options) (*Result, error) {
	a, err := r.artifacts.Open(ctx, r.cfg.ArtifactPath)
	if err != nil {
		return nil, stepErr(StepOpenArtifact, err)
	}

	return r.withArtifact(ctx, a, func(reg *registry.Registry) (*Result, error) {
		changed, err := reg.Put(ctx, registry.ResourceS3, st.BucketName)
		if err != nil {
			return nil, stepErr(StepRegister, err)
		}

		res := &Result{BucketName: st.BucketName, Action: ActionNone}
		if st.Remote && !changed && !a.Migrated && !opts.Force {
			return res, nil
		}
		if a.Migrated {
			r.log.Info(ctx, "artifact schema upgraded", "path", a.Path)
		}
		if err := r.push(ctx, st.BucketName); err != nil {
			return nil, err
		}
		res.Action = ActionPush
		return res, nil
	})
}

func (r *run) pull(ctx context.Context, bucket string) (*Result, error) {
	ciphertext, err := r.remote.GetObject(ctx, bucket, r.cfg.ObjectKey)
	if err != nil {
		return nil, stepErr(StepDownload, err)
	}

	key, err := r.keys.Key(ctx, r.cfg.SecretName)
	if err != nil {
		return nil, stepErr(StepGetKey, err)
	}

	plaintext, err := r.cipher.Decrypt(ciphertext, key)
	if err != nil {
		return nil, stepErr(StepDecrypt, err)
	}
	defer common.WipeByteArray(plaintext)

	if err := artifact.Validate(plaintext); err != nil {
		return nil, stepErr(StepDecrypt, fmt.Errorf("%w: %v", common.ErrDecryption, err))
	}
	if err := r.files.WriteFileAtomic(ctx, r.cfg.ArtifactPath, plaintext); err != nil {
		return nil, stepErr(StepWrite, err)
	}
	r.log.Info(ctx, "artifact restored from remote", "bucket", bucket, "path", r.cfg.ArtifactPath)

	a, err := r.artifacts.Open(ctx, r.cfg.ArtifactPath)
	if err != nil {
		return nil, stepErr(StepOpenArtifact, err)
	}

	return r.withArtifact(ctx, a, func(reg *registry.Registry) (*Result, error) {
		changed, err := reg.Put(ctx, registry.ResourceS3, bucket)
		if err != nil {
			return nil, stepErr(StepRegister, err)
		}
		if changed || a.Migrated {
			if err := r.push(ctx, bucket); err != nil {
				return nil, err
			}
		}
		return &Result{BucketName: bucket, Action: ActionPull}, nil
	})
}

func (r *run) bootstrap(ctx context.Context) (*Result, error) {
	bucket, err := r.remote.CreateBucket(ctx, r.cfg.BucketPrefix)
	if err != nil {
		return nil, stepErr(StepCreateBucket, err)
	}
	return r.createArtifact(ctx, bucket, ActionBootstrap)
}

func (r *run) createArtifact(ctx context.Context, bucket string, action Action) (*Result, error) {
	a, err := r.artifacts.Create(ctx, r.cfg.ArtifactPath)
	if err != nil {
		return nil, stepErr(StepOpenArtifact, err)
	}
	r.log.Info(ctx, "artifact created", "path", r.cfg.ArtifactPath)

	return r.withArtifact(ctx, a, func(reg *registry.Registry) (*Result, error) {
		if _, err := reg.Put(ctx, registry.ResourceS3, bucket); err != nil {
			return nil, stepErr(StepRegister, err)
		}
		if err := r.push(ctx, bucket); err != nil {
			return nil, err
		}
		return &Result{BucketName: bucket, Action: action}, nil
	})
}

// withArtifact runs fn against the artifact's registry and attaches the
// artifact to the result, closing it if fn fails.
func (r *run) withArtifact(ctx context.Context, a *artifact.Artifact, fn func(reg *registry.Registry) (*Result, error)) (*Result, error) {
	res, err := fn(registry.New(a.DB, r.log))
	if err != nil {
		if cerr := a.Close(); cerr != nil {
			r.log.Warn(ctx, "failed to close artifact", "path", a.Path, "error", cerr)
		}
		return nil, err
	}
	res.Artifact = a
	return res, nil
}

func (r *Reconciler) tempPath() string {
	return r.cfg.ArtifactPath + r.cfg.TempSuffix
}

// push encrypts a disposable copy of the artifact and uploads it. The copy
// is removed on every exit path; a failed removal is only logged.
func (r *run) push(ctx context.Context, bucket string) error {
	key, err := r.keys.GetOrCreateKey(ctx, r.cfg.SecretName)
	if err != nil {
		return stepErr(StepGetKey, err)
	}

	tmp := r.tempPath()
	defer func() {
		if rerr := r.files.Remove(ctx, tmp); rerr != nil {
			r.log.Warn(ctx, "failed to remove encrypted copy", "path", tmp, "error", rerr)
		}
	}()

	if err := r.files.Copy(ctx, r.cfg.ArtifactPath, tmp); err != nil {
		return stepErr(StepCopy, err)
	}

	plaintext, err := r.files.ReadFile(ctx, tmp)
	if err != nil {
		return stepErr(StepCopy, err)
	}
	ciphertext, err := r.cipher.Encrypt(plaintext, key)
	common.WipeByteArray(plaintext)
	if err != nil {
		return stepErr(StepEncrypt, err)
	}
	if err := r.files.WriteFile(ctx, tmp, ciphertext); err != nil {
		return stepErr(StepEncrypt, err)
	}

	body, err := r.files.ReadFile(ctx, tmp)
	if err != nil {
		return stepErr(StepUpload, err)
	}
	if err := r.remote.PutObject(ctx, bucket, r.cfg.ObjectKey, body); err != nil {
		return stepErr(StepUpload, err)
	}

	r.log.Info(ctx, "artifact pushed", "bucket", bucket, "key", r.cfg.ObjectKey, "size", len(body))
	return nil
}
