package prompt

// exampleSource is the sample module used by the demonstration prompt.
const exampleSource = `
import pandas as pd
from typing import List, Dict

def process_data(data: pd.DataFrame) -> Dict:
    # Process the data
    return {"result": "processed"}

def validate_input(data: pd.DataFrame) -> bool:
    return len(data) > 0
`

const (
	exampleTask         = "Create a function to aggregate data by category and calculate statistics"
	exampleFunctionName = "aggregate_by_category"
)

// ExampleRequest returns the fixed request behind the demonstration prompt.
func ExampleRequest() Request {
	return Request{
		SourceText:      exampleSource,
		TaskDescription: exampleTask,
		FunctionName:    exampleFunctionName,
		ContextLines:    DefaultContextLines,
	}
}

// Example builds the demonstration prompt.
func Example() string {
	return BuildWithOptions(ExampleRequest())
}
