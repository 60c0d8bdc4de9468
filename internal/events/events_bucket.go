package events

// BucketFileEvent describes a file that appeared in the bucket.
type BucketFileEvent struct {
	Path string
	Name string
	Size int64
}

// BucketProcessedEvent summarizes a bucket processing pass.
type BucketProcessedEvent struct {
	Files       []string
	WorkflowIDs []string
}

// NewBucketAssetArrived creates a BucketAssetArrived event.
func NewBucketAssetArrived(path, name string, size int64) Event {
	return NewEvent(BucketAssetArrived, &BucketFileEvent{
		Path: path,
		Name: name,
		Size: size,
	})
}

// NewBucketProcessed creates a BucketProcessed event.
func NewBucketProcessed(files, workflowIDs []string) Event {
	return NewEvent(BucketProcessed, &BucketProcessedEvent{
		Files:       files,
		WorkflowIDs: workflowIDs,
	})
}
