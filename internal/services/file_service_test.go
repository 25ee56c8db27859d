package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/vaulty-hq/vaulty/internal/models"
)

func TestUploadAssignsFreshStoredNames(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	data := []byte("identical content")
	first, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"report.txt", "text/plain", int64(len(data)), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	second, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"report.txt", "text/plain", int64(len(data)), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("second upload failed: %v", err)
	}

	// No dedup by content: distinct rows, distinct stored names, same hash.
	if first.ID == second.ID {
		t.Error("expected distinct file ids")
	}
	if first.StoredName == second.StoredName {
		t.Error("expected distinct stored names")
	}
	if first.ContentHash != second.ContentHash {
		t.Error("identical bytes should hash identically")
	}

	if first.StoredName == "report.txt" {
		t.Error("stored name must be independent of the original name")
	}
	if !strings.HasSuffix(first.StoredName, ".txt") {
		t.Errorf("stored name should keep the extension, got %s", first.StoredName)
	}
	if first.UploadedBy == nil || first.UploadedBy.String() != alice.ID.String() {
		t.Error("token upload should record the uploader")
	}
}

func TestUploadViaAPIKeyHasNoUploader(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	data := []byte("machine upload")
	file, err := env.fileSvc.Upload(context.Background(), apiKeyPrincipal(project), project.ID,
		"robot.bin", "", int64(len(data)), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.UploadedBy != nil {
		t.Error("API-key-only upload should have no uploader")
	}
	if file.MimeType != "application/octet-stream" {
		t.Errorf("expected fallback mime type, got %s", file.MimeType)
	}
}

func TestUploadRejectsOversizedDeclaration(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	_, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"big.bin", "", testMaxFileSize+1, bytes.NewReader([]byte("tiny")), nil)
	expectKind(t, err, KindValidation)
}

func TestUploadRejectsOversizedStream(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	// Declared size lies; the written byte count is what counts.
	big := bytes.Repeat([]byte("a"), testMaxFileSize+1)
	_, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"big.bin", "", 10, bytes.NewReader(big), nil)
	expectKind(t, err, KindValidation)
}

func TestAPIKeyScopeBindsExactlyOneProject(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	p := env.createProject(t, alice, "p", false)
	q := env.createProject(t, alice, "q", false)

	data := []byte("scoped")
	// The bound project is authorized regardless of user identity.
	if _, err := env.fileSvc.Upload(context.Background(), apiKeyPrincipal(p), p.ID,
		"a.txt", "", int64(len(data)), bytes.NewReader(data), nil); err != nil {
		t.Fatalf("upload to bound project failed: %v", err)
	}

	// Any other project is off limits, even one owned by the same user.
	_, err := env.fileSvc.Upload(context.Background(), apiKeyPrincipal(p), q.ID,
		"a.txt", "", int64(len(data)), bytes.NewReader(data), nil)
	expectKind(t, err, KindForbidden)

	_, err = env.fileSvc.List(apiKeyPrincipal(p), q.ID, 0, 0)
	expectKind(t, err, KindForbidden)
}

func TestUserScopeRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	bob := env.registerUser(t, "bob", "bob@x.com")
	project := env.createProject(t, alice, "docs", false)

	data := []byte("private")
	file, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"secret.txt", "text/plain", int64(len(data)), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, _, err := env.fileSvc.Download(context.Background(), userPrincipal(bob), file.ID); KindOf(err) != KindForbidden {
		t.Errorf("expected Forbidden for non-owner download, got %v", err)
	}
	if _, err := env.fileSvc.List(userPrincipal(bob), project.ID, 0, 0); KindOf(err) != KindForbidden {
		t.Errorf("expected Forbidden for non-owner list, got %v", err)
	}
	if err := env.fileSvc.Delete(context.Background(), userPrincipal(bob), file.ID); KindOf(err) != KindForbidden {
		t.Errorf("expected Forbidden for non-owner delete, got %v", err)
	}

	// The project's API key works for anyone holding it.
	got, rc, err := env.fileSvc.Download(context.Background(), apiKeyPrincipal(project), file.ID)
	if err != nil {
		t.Fatalf("api-key download failed: %v", err)
	}
	defer rc.Close()
	if got.ID != file.ID {
		t.Error("downloaded wrong file")
	}
}

func TestDownloadIncrementsCounter(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	data := []byte("count me")
	file, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"c.txt", "text/plain", int64(len(data)), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, rc, err := env.fileSvc.Download(context.Background(), userPrincipal(alice), file.ID)
		if err != nil {
			t.Fatalf("Download failed: %v", err)
		}
		io.Copy(io.Discard, rc)
		rc.Close()
	}

	row, err := env.files.FindByID(file.ID)
	if err != nil || row == nil {
		t.Fatalf("file lookup failed: %v", err)
	}
	if row.DownloadCount != 3 {
		t.Errorf("expected download count 3, got %d", row.DownloadCount)
	}
}

func TestPublicVisibilityIsAConjunction(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", true)

	data := []byte("published")
	file, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"pub.txt", "text/plain", int64(len(data)), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// File not yet public: a public project alone exposes nothing.
	_, _, err = env.fileSvc.GetPublicFile(context.Background(), file.StoredName)
	expectKind(t, err, KindNotFound)

	isPublic := true
	if _, err := env.fileSvc.UpdateMetadata(userPrincipal(alice), file.ID, nil, &isPublic); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}

	got, rc, err := env.fileSvc.GetPublicFile(context.Background(), file.StoredName)
	if err != nil {
		t.Fatalf("public download should succeed when both flags are set: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(body, data) {
		t.Error("public download returned wrong bytes")
	}
	if got.ContentHash != file.ContentHash {
		t.Error("public download returned wrong file record")
	}

	// Toggle the project private: the public file goes dark.
	if err := env.projectSvc.Update(userPrincipal(alice), project.ID, map[string]any{"is_public": false}); err != nil {
		t.Fatalf("project update failed: %v", err)
	}
	_, _, err = env.fileSvc.GetPublicFile(context.Background(), file.StoredName)
	expectKind(t, err, KindNotFound)

	// Project public again but file private: still dark.
	if err := env.projectSvc.Update(userPrincipal(alice), project.ID, map[string]any{"is_public": true}); err != nil {
		t.Fatalf("project update failed: %v", err)
	}
	notPublic := false
	if _, err := env.fileSvc.UpdateMetadata(userPrincipal(alice), file.ID, nil, &notPublic); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}
	_, _, err = env.fileSvc.GetPublicFile(context.Background(), file.StoredName)
	expectKind(t, err, KindNotFound)

	// Unknown stored names are indistinguishable from private ones.
	_, _, err = env.fileSvc.GetPublicFile(context.Background(), "no-such-name.txt")
	expectKind(t, err, KindNotFound)
}

func TestDeleteIsBestEffortOnStorage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	data := []byte("doomed")
	file, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"d.txt", "text/plain", int64(len(data)), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// The blob vanishes out from under us; the record must still go.
	if err := os.Remove(file.StoragePath); err != nil {
		t.Fatalf("failed to remove blob: %v", err)
	}

	if err := env.fileSvc.Delete(context.Background(), userPrincipal(alice), file.ID); err != nil {
		t.Fatalf("Delete should succeed despite missing blob: %v", err)
	}

	row, err := env.files.FindByID(file.ID)
	if err != nil {
		t.Fatalf("file lookup failed: %v", err)
	}
	if row != nil {
		t.Error("file row should be gone")
	}
}

func TestSearchAndListScoping(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	for _, name := range []string{"report-2026.pdf", "invoice.pdf", "notes.txt"} {
		data := []byte(name)
		if _, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
			name, "", int64(len(data)), bytes.NewReader(data), models.Metadata{"tag": "quarterly"}); err != nil {
			t.Fatalf("upload %s failed: %v", name, err)
		}
	}

	files, err := env.fileSvc.List(userPrincipal(alice), project.ID, 2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected limit 2 respected, got %d", len(files))
	}

	hits, err := env.fileSvc.Search(userPrincipal(alice), project.ID, "invoice")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].OriginalName != "invoice.pdf" {
		t.Errorf("expected one invoice hit, got %d", len(hits))
	}

	// Metadata participates in search.
	hits, err = env.fileSvc.Search(userPrincipal(alice), project.ID, "quarterly")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("expected metadata matches for all files, got %d", len(hits))
	}
}

func TestUpdateMetadataLastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@x.com")
	project := env.createProject(t, alice, "docs", false)

	data := []byte("meta")
	file, err := env.fileSvc.Upload(context.Background(), userPrincipal(alice), project.ID,
		"m.txt", "text/plain", int64(len(data)), bytes.NewReader(data), models.Metadata{"a": "1"})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, err := env.fileSvc.UpdateMetadata(userPrincipal(alice), file.ID, models.Metadata{"b": "2"}, nil); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}

	row, err := env.files.FindByID(file.ID)
	if err != nil || row == nil {
		t.Fatalf("file lookup failed: %v", err)
	}
	if _, ok := row.Metadata["a"]; ok {
		t.Error("metadata update replaces the object, it does not merge")
	}
	if row.Metadata["b"] != "2" {
		t.Errorf("expected replaced metadata, got %v", row.Metadata)
	}
}
