package server

// Wire types for the inference protocol. Tensor data travels flat,
// row-major, as JSON numbers.

type inferTensor struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float64 `json:"data"`
}

type inferRequest struct {
	ID     string        `json:"id,omitempty"`
	Inputs []inferTensor `json:"inputs"`
}

type inferResponse struct {
	ModelName string        `json:"model_name"`
	ID        string        `json:"id,omitempty"`
	Outputs   []inferTensor `json:"outputs"`
}

type metadataTensor struct {
	Name     string  `json:"name"`
	Datatype string  `json:"datatype"`
	Shape    []int64 `json:"shape"`
}

type metadataResponse struct {
	Name    string           `json:"name"`
	Backend string           `json:"backend"`
	Inputs  []metadataTensor `json:"inputs"`
	Outputs []metadataTensor `json:"outputs"`
}

type errorResponse struct {
	Error string `json:"error"`
}
