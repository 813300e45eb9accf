package collect_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiln/pkg/adapters/markup"
	"github.com/aretw0/kiln/pkg/collect"
	"github.com/aretw0/kiln/pkg/core"
)

func ptr(s string) *string { return &s }

func taskDefinition(t *testing.T) *core.EntityDefinition {
	t.Helper()
	def, err := core.NewEntityDefinition("Task", []core.PropertyDefinition{
		{Name: "Title", Type: "string"},
		{Name: "Tags", Type: "string[]", Default: ptr("core"), IsCollection: true},
		{Name: "Owners", Type: "string[]", IsCollection: true},
		{Name: "Status", Type: "string", Default: ptr("open")},
		{Name: "x", Type: "string"},
		{Name: "Path", Type: "string"},
	}, []core.Variable{{Name: "team", Value: "platform"}})
	require.NoError(t, err)
	return def
}

func parse(t *testing.T, doc string) []*core.Node {
	t.Helper()
	root, err := markup.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root.Children
}

func collectAll(t *testing.T, doc string) []*core.Record {
	t.Helper()
	c := collect.New(taskDefinition(t))
	records, err := c.Records(parse(t, doc))
	require.NoError(t, err)
	require.True(t, c.Stats().Balanced(), "scope pushes and pops must match")
	return records
}

func TestCollect_EndToEnd(t *testing.T) {
	records := collectAll(t, `<doc><Task id="r1"><tag value="urgent"/></Task></doc>`)
	require.Len(t, records, 1)

	want := &core.Record{
		ID: ptr("r1"),
		Properties: core.Properties{
			"Tags":   []string{"core"},
			"Status": "open",
		},
		Tags: []string{"urgent"},
	}
	if diff := cmp.Diff(want, records[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_CollectionDefaultIsAdditive(t *testing.T) {
	records := collectAll(t, `<doc><Task id="r1"><add Tags="urgent-item"/></Task></doc>`)
	assert.Equal(t, []string{"core", "urgent-item"}, records[0].Items("Tags"))

	records = collectAll(t, `<doc><Task id="r1"><add Owners="ana"/><add Owners="bo"/></Task></doc>`)
	assert.Equal(t, []string{"ana", "bo"}, records[0].Items("Owners"))
}

func TestCollect_Defaults(t *testing.T) {
	records := collectAll(t, `<doc><Task/><Task Status="done"/></doc>`)
	require.Len(t, records, 2)

	assert.Nil(t, records[0].ID)
	assert.Equal(t, "open", records[0].Properties["Status"])
	assert.Equal(t, []string{"core"}, records[0].Properties["Tags"])
	assert.False(t, records[0].Has("Title"), "properties without defaults stay absent")

	assert.Equal(t, "done", records[1].Properties["Status"])
}

func TestCollect_InheritedCommandsApplyLast(t *testing.T) {
	records := collectAll(t, `<doc>
		<set x="2">
			<Task id="a" x="1"/>
			<Task id="b"><x>3</x></Task>
		</set>
		<Task id="c" x="1"/>
	</doc>`)
	require.Len(t, records, 3)
	assert.Equal(t, "2", records[0].Scalar("x"))
	assert.Equal(t, "2", records[1].Scalar("x"))
	assert.Equal(t, "1", records[2].Scalar("x"), "scope closed before c")
}

func TestCollect_ScopesApplyOutermostFirst(t *testing.T) {
	records := collectAll(t, `<doc>
		<set Path="root">
			<append Path="/a">
				<prefix Path="~">
					<Task id="t"/>
				</prefix>
			</append>
		</set>
	</doc>`)
	assert.Equal(t, "~root/a", records[0].Scalar("Path"))
}

func TestCollect_AttributeThenChildOrder(t *testing.T) {
	records := collectAll(t, `<doc>
		<Task id="t" Title="base">
			<append Title="-child"/>
			<prefix Title="pre-"/>
		</Task>
	</doc>`)
	assert.Equal(t, "pre-base-child", records[0].Scalar("Title"))
}

func TestCollect_AppendPrefixOnEmpty(t *testing.T) {
	records := collectAll(t, `<doc><Task><append Path="x"/><prefix Path="y"/></Task></doc>`)
	assert.Equal(t, "yx", records[0].Scalar("Path"))
}

func TestCollect_SetDualDispatch(t *testing.T) {
	records := collectAll(t, `<doc><Task><set Title="a" Owners="ana" tag="t1"/><Owners>bo</Owners><tag>t2</tag></Task></doc>`)
	r := records[0]
	assert.Equal(t, "a", r.Properties["Title"])
	assert.Equal(t, []string{"ana", "bo"}, r.Properties["Owners"])
	assert.Equal(t, []string{"t1", "t2"}, r.Tags)
}

func TestCollect_TagsAreDeduplicated(t *testing.T) {
	records := collectAll(t, `<doc><tag value="x"><Task tag="x"><tag value="y"/></Task></tag></doc>`)
	assert.Equal(t, []string{"x", "y"}, records[0].Tags)
}

func TestCollect_TagWithoutValueIsIgnored(t *testing.T) {
	records := collectAll(t, `<doc><Task><tag other="1"/></Task></doc>`)
	assert.Empty(t, records[0].Tags)
}

func TestCollect_ScopeTagsApplyToEveryRecord(t *testing.T) {
	records := collectAll(t, `<doc>
		<tag value="batch">
			<add Owners="ops">
				<Task id="1"/>
				<Task id="2"><add Owners="ana"/></Task>
			</add>
		</tag>
	</doc>`)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.True(t, r.HasTag("batch"))
	}
	assert.Equal(t, []string{"ops"}, records[0].Items("Owners"))
	assert.Equal(t, []string{"ana", "ops"}, records[1].Items("Owners"))
}

func TestCollect_MultiAttributeScopeIsOneEntry(t *testing.T) {
	c := collect.New(taskDefinition(t))
	_, err := c.Records(parse(t, `<doc>
		<set Title="a" x="b" tag="c">
			<var name="v" value="1">
				<Task/>
			</var>
		</set>
	</doc>`))
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 2, stats.ScopePushes)
	assert.Equal(t, 2, stats.ScopePops)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, 3, stats.MaxDepth)
}

func TestCollect_LeafScopesHaveNoEffect(t *testing.T) {
	c := collect.New(taskDefinition(t))
	records, err := c.Records(parse(t, `<doc><set Title="x"/><var name="a" value="b"/><var/><Task/></doc>`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Has("Title"))
	assert.Equal(t, 0, c.Stats().ScopePushes)
}

func TestCollect_Sink(t *testing.T) {
	var created []string
	sink := &collect.Collection{}
	hooks := collect.SinkFuncs{
		Create: func(id *string) *core.Record {
			if id != nil {
				created = append(created, *id)
			}
			return sink.CreateRecordShell(id)
		},
		Add: sink.AddRecord,
	}

	c := collect.New(taskDefinition(t), collect.WithSink(hooks))
	require.NoError(t, c.Collect(parse(t, `<doc><Task id="a"/><set Title="t"><Task id="b"/></set></doc>`)))

	assert.Equal(t, []string{"a", "b"}, created)
	require.Len(t, sink.Records, 2)
	assert.Equal(t, "t", sink.Records[1].Scalar("Title"))
}

func TestCollect_WithoutSink(t *testing.T) {
	c := collect.New(taskDefinition(t))
	assert.Error(t, c.Collect(nil))
}

func TestCollect_SinkError(t *testing.T) {
	boom := errors.New("boom")
	c := collect.New(taskDefinition(t), collect.WithSink(collect.SinkFuncs{
		Add: func(*core.Record) error { return boom },
	}))
	err := c.Collect(parse(t, `<doc><Task id="a"/></doc>`))
	require.ErrorIs(t, err, boom)

	var ne *core.NodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "Task", ne.Node.Name)
}

func TestProduceRecords_StopsEarly(t *testing.T) {
	c := collect.New(taskDefinition(t))
	nodes := parse(t, `<doc>
		<set Title="a">
			<Task id="1"/>
			<var name="v" value="x">
				<Task id="2"/>
				<Task id="3"/>
			</var>
		</set>
		<bogus/>
	</doc>`)

	var ids []string
	for r, err := range c.ProduceRecords(nodes) {
		require.NoError(t, err)
		ids = append(ids, r.Identity())
		if len(ids) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, ids)
	assert.True(t, c.Stats().Balanced(), "stopping early unwinds every scope")

	_, err := c.Records(nodes)
	assert.ErrorIs(t, err, core.ErrUnknownElement, "a full traversal reaches the bogus element")
}

func TestProduceRecords_FreshStacksPerTraversal(t *testing.T) {
	c := collect.New(taskDefinition(t))
	nodes := parse(t, `<doc><set Title="a"><Task/></set></doc>`)

	for i := 0; i < 2; i++ {
		records, err := c.Records(nodes)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 1, c.Stats().ScopePushes)
	}

	plain, err := c.Records(parse(t, `<doc><Task/></doc>`))
	require.NoError(t, err)
	assert.False(t, plain[0].Has("Title"))
}

func TestCollect_MaxDepth(t *testing.T) {
	doc := "<doc>" + strings.Repeat(`<tag value="a">`, 5) + "<Task/>" + strings.Repeat("</tag>", 5) + "</doc>"
	nodes := parse(t, doc)

	c := collect.New(taskDefinition(t), collect.WithMaxDepth(4))
	_, err := c.Records(nodes)
	assert.ErrorIs(t, err, core.ErrDocumentTooDeep)
	assert.True(t, c.Stats().Balanced())

	c = collect.New(taskDefinition(t), collect.WithMaxDepth(6))
	records, err := c.Records(nodes)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
