package kiln_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/kiln"
	"github.com/aretw0/kiln/pkg/core"
)

func taskDefinition() *core.EntityDefinition {
	def := "core"
	d, err := core.NewEntityDefinition("Task", []core.PropertyDefinition{
		{Name: "Title", Type: "string"},
		{Name: "Tags", Type: "string[]", Default: &def, IsCollection: true},
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
	return d
}

// Example_basic builds records from an in-memory document.
func Example_basic() {
	r, err := kiln.New(kiln.WithSchema(taskDefinition()))
	if err != nil {
		log.Fatal(err)
	}

	doc := `<records>
  <var name="area" value="docs">
    <tag value="${area}">
      <Task id="r1" Title="Write ${area}"/>
      <Task id="r2"><add Tags="extra"/></Task>
    </tag>
  </var>
</records>`

	records, err := r.ReadDocument(context.Background(), strings.NewReader(doc))
	if err != nil {
		log.Fatal(err)
	}
	for _, rec := range records {
		fmt.Printf("%s %q %v %v\n", rec.Identity(), rec.Scalar("Title"), rec.Items("Tags"), rec.Tags)
	}
	// Output:
	// r1 "Write docs" [core] [docs]
	// r2 "" [core extra] [docs]
}

// ExampleDecodeAll shows how to decode records into a struct.
func ExampleDecodeAll() {
	r, err := kiln.New(kiln.WithSchema(taskDefinition()))
	if err != nil {
		log.Fatal(err)
	}

	type Task struct {
		Title string   `json:"Title"`
		Tags  []string `json:"Tags"`
	}

	records, err := r.ReadDocument(context.Background(),
		strings.NewReader(`<records><Task id="t1" Title="Ship"/></records>`))
	if err != nil {
		log.Fatal(err)
	}
	tasks, err := kiln.DecodeAll[Task](records)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %s %v\n", tasks[0].ID, tasks[0].Data.Title, tasks[0].Data.Tags)
	// Output:
	// t1: Ship [core]
}
