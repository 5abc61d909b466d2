package library

// UploadPhase is the observable state of a PDF upload.
type UploadPhase string

const (
	UploadUploading  UploadPhase = "uploading"  // request body is being sent
	UploadExtracting UploadPhase = "extracting" // body sent, server extracting metadata
	UploadDone       UploadPhase = "done"
	UploadFailed     UploadPhase = "failed"
)

// UploadProgress is delivered to an upload's progress callback
type UploadProgress struct {
	Phase     UploadPhase
	FileName  string
	BytesSent int64
	Total     int64
}

// UploadProgressFunc receives upload progress events in order
type UploadProgressFunc func(UploadProgress)
