package requests

// SetBucketRequest switches a view to another bucket.
type SetBucketRequest struct {
	Key string `json:"key" binding:"required"`
}

// ImageIDsRequest names photos by catalog id. The field name matches the
// bundling wire format.
type ImageIDsRequest struct {
	ImageIDs []int64 `json:"imageIds"`
}
