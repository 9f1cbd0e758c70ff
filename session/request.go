package session

// Option mutates a request before it is sent. Options are carried only by
// ResumableUploadRequest and applied by Transport.CreateSession
// implementations that understand them; unknown options are ignored by any
// particular transport. HTTPTransport ignores NewResumableUploadSession and
// DisableMD5Hash.
type Option interface {
	applyOption(*requestOptions)
}

type requestOptions struct {
	ifGenerationMatch         *int64
	ifMetagenerationNotMatch  *int64
	newResumableUploadSession bool
	fields                    string
	disableMD5Hash            bool
	userProject               string
	predefinedACL             string
	contentEncoding           string
}

type optionFunc func(*requestOptions)

func (f optionFunc) applyOption(o *requestOptions) { f(o) }

// IfGenerationMatch succeeds only if the object's current generation
// matches, used to prevent clobbering a concurrently created object.
func IfGenerationMatch(generation int64) Option {
	return optionFunc(func(o *requestOptions) { o.ifGenerationMatch = &generation })
}

// IfMetagenerationNotMatch succeeds only if the object's current
// metageneration does not match.
func IfMetagenerationNotMatch(metageneration int64) Option {
	return optionFunc(func(o *requestOptions) { o.ifMetagenerationNotMatch = &metageneration })
}

// NewResumableUploadSession forces creation of a brand new session URL even
// if one might otherwise be reused.
func NewResumableUploadSession() Option {
	return optionFunc(func(o *requestOptions) { o.newResumableUploadSession = true })
}

// Fields restricts the fields returned in finalized object metadata.
func Fields(fields string) Option {
	return optionFunc(func(o *requestOptions) { o.fields = fields })
}

// DisableMD5Hash turns off server-side MD5 computation for the object.
func DisableMD5Hash() Option {
	return optionFunc(func(o *requestOptions) { o.disableMD5Hash = true })
}

// UserProject sets the project to bill for the request.
func UserProject(project string) Option {
	return optionFunc(func(o *requestOptions) { o.userProject = project })
}

// PredefinedACL applies a predefined ACL to the created object.
func PredefinedACL(acl string) Option {
	return optionFunc(func(o *requestOptions) { o.predefinedACL = acl })
}

// ContentEncoding sets the object's Content-Encoding metadata.
func ContentEncoding(encoding string) Option {
	return optionFunc(func(o *requestOptions) { o.contentEncoding = encoding })
}

func buildOptions(opts []Option) requestOptions {
	var ro requestOptions
	for _, o := range opts {
		o.applyOption(&ro)
	}
	return ro
}

// ResumableUploadRequest describes the creation of a new resumable upload
// session: the destination bucket/object plus precondition and metadata
// options.
type ResumableUploadRequest struct {
	Bucket      string
	Object      string
	ContentType string
	Options     []Option
}

// UploadChunkRequest carries one non-final chunk of a resumable upload.
// Payload must be a positive multiple of ChunkSizeQuantum.
type UploadChunkRequest struct {
	SessionURL string
	Offset     uint64
	Payload    []byte
}

// UploadFinalChunkRequest carries the last chunk of a resumable upload,
// along with the total object size now known.
type UploadFinalChunkRequest struct {
	SessionURL string
	Offset     uint64
	Payload    []byte
	TotalSize  uint64
}

// QueryResumableUploadRequest asks the server for the current commit
// frontier of an existing session, without sending any new bytes.
type QueryResumableUploadRequest struct {
	SessionURL string
}

// ReadObjectRangeRequest describes a ranged read of object bytes.
type ReadObjectRangeRequest struct {
	Bucket      string
	Object      string
	Generation  int64
	ReadFromOff uint64
	ReadLimit   uint64 // 0 means read to the end.
}
