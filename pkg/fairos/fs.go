package fairos

import (
	"bytes"
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/fairos-dfs/sdk-go/internal/httpx"
	"github.com/fairos-dfs/sdk-go/internal/multipartx"
)

// Compression selects the transparent compression applied to uploaded file
// blocks.
type Compression string

const (
	NoCompression Compression = ""
	Gzip          Compression = "gzip"
	Snappy        Compression = "snappy"
)

// DirEntry is one directory in a listing.
type DirEntry struct {
	Name             string `json:"name"`
	ContentType      string `json:"content_type"`
	CreationTime     string `json:"creation_time"`
	ModificationTime string `json:"modification_time"`
	AccessTime       string `json:"access_time"`
}

// FileEntry is one file in a listing. Size and BlockSize arrive as decimal
// strings.
type FileEntry struct {
	Name             string `json:"name"`
	ContentType      string `json:"content_type"`
	Size             string `json:"size"`
	BlockSize        string `json:"block_size"`
	CreationTime     string `json:"creation_time"`
	ModificationTime string `json:"modification_time"`
	AccessTime       string `json:"access_time"`
}

// DirListing is the content of one directory.
type DirListing struct {
	Dirs  []DirEntry  `json:"dirs"`
	Files []FileEntry `json:"files"`
}

// DirInfo describes a directory.
type DirInfo struct {
	PodName          string `json:"pod_name"`
	DirPath          string `json:"dir_path"`
	DirName          string `json:"dir_name"`
	CreationTime     string `json:"creation_time"`
	ModificationTime string `json:"modification_time"`
	AccessTime       string `json:"access_time"`
	NoOfDirectories  string `json:"no_of_directories"`
	NoOfFiles        string `json:"no_of_files"`
}

// FileInfo describes a file.
type FileInfo struct {
	PodName          string      `json:"pod_name"`
	FilePath         string      `json:"file_path"`
	FileName         string      `json:"file_name"`
	FileSize         string      `json:"file_size"`
	BlockSize        string      `json:"block_size"`
	Compression      string      `json:"compression"`
	ContentType      string      `json:"content_type"`
	CreationTime     string      `json:"creation_time"`
	ModificationTime string      `json:"modification_time"`
	AccessTime       string      `json:"access_time"`
	Blocks           []FileBlock `json:"blocks"`
}

// FileBlock is one storage block of a file.
type FileBlock struct {
	Name           string `json:"name"`
	Reference      string `json:"reference"`
	Size           string `json:"size"`
	CompressedSize string `json:"compressed_size"`
}

// SharedFileInfo describes a file sharing reference before it is received.
type SharedFileInfo struct {
	FileName    string `json:"name"`
	PodName     string `json:"pod_name"`
	FilePath    string `json:"dir"`
	FileSize    string `json:"size"`
	BlockSize   string `json:"block_size"`
	Compression string `json:"compression"`
	Sender      string `json:"source_address"`
	Receiver    string `json:"dest_address"`
	SharedTime  string `json:"shared_time"`
}

type fileSharingResponse struct {
	Reference string `json:"file_sharing_reference"`
}

type fileReceiveResponse struct {
	FileName string `json:"file_name"`
}

// Mkdir creates a directory at dirPath inside the pod.
func (c *Client) Mkdir(ctx context.Context, username, pod, dirPath string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "dir_path": dirPath}
	if _, err := c.post(ctx, "/dir/mkdir", payload, token, nil); err != nil {
		return mapError(err, ErrFileSystem)
	}
	return nil
}

// Rmdir removes the directory at dirPath.
func (c *Client) Rmdir(ctx context.Context, username, pod, dirPath string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "dir_path": dirPath}
	if err := c.del(ctx, "/dir/rmdir", payload, token, nil); err != nil {
		return mapError(err, ErrFileSystem)
	}
	return nil
}

// Ls lists the directories and files under dirPath.
func (c *Client) Ls(ctx context.Context, username, pod, dirPath string) (*DirListing, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.Set("pod_name", pod).Set("dir_path", dirPath)
	var out DirListing
	if err := c.get(ctx, "/dir/ls", query, token, &out); err != nil {
		return nil, mapError(err, ErrFileSystem)
	}
	return &out, nil
}

// DirExists reports whether dirPath exists in the pod.
func (c *Client) DirExists(ctx context.Context, username, pod, dirPath string) (bool, error) {
	token, err := c.token(username)
	if err != nil {
		return false, err
	}
	query := httpx.Query{}.Set("pod_name", pod).Set("dir_path", dirPath)
	var out presenceResponse
	if err := c.get(ctx, "/dir/present", query, token, &out); err != nil {
		return false, mapError(err, ErrFileSystem)
	}
	return out.Present, nil
}

// StatDir fetches info about a directory.
func (c *Client) StatDir(ctx context.Context, username, pod, dirPath string) (*DirInfo, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.Set("pod_name", pod).Set("dir_path", dirPath)
	var out DirInfo
	if err := c.get(ctx, "/dir/stat", query, token, &out); err != nil {
		return nil, mapError(err, ErrFileSystem)
	}
	return &out, nil
}

// UploadBuffer writes data as a file named fileName under dirPath. An empty
// contentType defaults to application/octet-stream.
func (c *Client) UploadBuffer(ctx context.Context, username, pod, dirPath, fileName, contentType string, data []byte, blockSize BlockSize, compression Compression) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	b := &multipartx.Builder{}
	b.AddField("pod_name", pod)
	b.AddField("dir_path", dirPath)
	b.AddField("block_size", blockSize.String())
	b.AddReader("files", bytes.NewReader(data), fileName, contentType)
	boundary, body, err := b.Build()
	if err != nil {
		return errors.Wrap(err, "fairos: build upload body")
	}
	if err := c.upload(ctx, token, boundary, body, compression); err != nil {
		return mapError(err, ErrFileSystem)
	}
	return nil
}

// UploadFile uploads a local file into the pod under dirPath, keeping its
// base name.
func (c *Client) UploadFile(ctx context.Context, username, pod, dirPath, localPath string, blockSize BlockSize, compression Compression) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	b := &multipartx.Builder{}
	b.AddField("pod_name", pod)
	b.AddField("dir_path", dirPath)
	b.AddField("block_size", blockSize.String())
	b.AddFile("files", localPath)
	boundary, body, err := b.Build()
	if err != nil {
		return errors.Wrap(err, "fairos: build upload body")
	}
	if err := c.upload(ctx, token, boundary, body, compression); err != nil {
		return mapError(err, ErrFileSystem)
	}
	return nil
}

func (c *Client) upload(ctx context.Context, token, boundary string, body []byte, compression Compression) error {
	_, err := c.api.DoMultipart(ctx, &httpx.MultipartRequest{
		Path:        "/file/upload",
		Boundary:    boundary,
		Body:        body,
		Token:       token,
		Compression: string(compression),
	})
	return err
}

// DownloadBuffer fetches the file at filePath and returns its content.
func (c *Client) DownloadBuffer(ctx context.Context, username, pod, filePath string) ([]byte, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	b := &multipartx.Builder{}
	b.AddField("pod_name", pod)
	b.AddField("file_path", filePath)
	boundary, body, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(err, "fairos: build download body")
	}
	data, err := c.api.DoDownload(ctx, &httpx.MultipartRequest{
		Path:     "/file/download",
		Boundary: boundary,
		Body:     body,
		Token:    token,
	})
	if err != nil {
		return nil, mapError(err, ErrFileSystem)
	}
	return data, nil
}

// DownloadFile fetches the file at filePath and writes it to localPath.
func (c *Client) DownloadFile(ctx context.Context, username, pod, filePath, localPath string) error {
	data, err := c.DownloadBuffer(ctx, username, pod, filePath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return errors.Wrapf(err, "fairos: write %s", localPath)
	}
	return nil
}

// ShareFile shares the file at filePath with another user and returns the
// sharing reference.
func (c *Client) ShareFile(ctx context.Context, username, pod, filePath, destUser string) (string, error) {
	token, err := c.token(username)
	if err != nil {
		return "", err
	}
	payload := map[string]string{
		"pod_name":  pod,
		"file_path": filePath,
		"dest_user": destUser,
	}
	var out fileSharingResponse
	if _, err := c.post(ctx, "/file/share", payload, token, &out); err != nil {
		return "", mapError(err, ErrFileSystem)
	}
	return out.Reference, nil
}

// Rm deletes the file at filePath.
func (c *Client) Rm(ctx context.Context, username, pod, filePath string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "file_path": filePath}
	if err := c.del(ctx, "/file/delete", payload, token, nil); err != nil {
		return mapError(err, ErrFileSystem)
	}
	return nil
}

// StatFile fetches info about a file.
func (c *Client) StatFile(ctx context.Context, username, pod, filePath string) (*FileInfo, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.Set("pod_name", pod).Set("file_path", filePath)
	var out FileInfo
	if err := c.get(ctx, "/file/stat", query, token, &out); err != nil {
		return nil, mapError(err, ErrFileSystem)
	}
	return &out, nil
}

// ReceiveSharedFile stores a shared file under dirPath inside the pod and
// returns the full path it was saved at.
func (c *Client) ReceiveSharedFile(ctx context.Context, username, pod, sharingRef, dirPath string) (string, error) {
	token, err := c.token(username)
	if err != nil {
		return "", err
	}
	query := httpx.Query{}.
		Set("pod_name", pod).
		Set("sharing_ref", sharingRef).
		Set("dir_path", dirPath)
	var out fileReceiveResponse
	if err := c.get(ctx, "/file/receive", query, token, &out); err != nil {
		return "", mapError(err, ErrFileSystem)
	}
	return out.FileName, nil
}

// SharedFileDetails inspects a sharing reference without receiving the file.
func (c *Client) SharedFileDetails(ctx context.Context, username, pod, sharingRef string) (*SharedFileInfo, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.
		Set("pod_name", pod).
		Set("sharing_ref", sharingRef)
	var out SharedFileInfo
	if err := c.get(ctx, "/file/receiveinfo", query, token, &out); err != nil {
		return nil, mapError(err, ErrFileSystem)
	}
	return &out, nil
}
