package signing

type fileInfo struct {
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	Mimetype     string `json:"mimetype"`
}

type uploadResponse struct {
	Message string   `json:"message"`
	File    fileInfo `json:"file"`
}
