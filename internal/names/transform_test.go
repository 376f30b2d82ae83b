package names

import (
	"reflect"
	"testing"
)

func TestToDockerSimpleKeys(t *testing.T) {
	in := map[string]any{"host-config": map[string]any{"network-mode": "bridge"}}
	out := ToDocker(in)

	want := map[string]any{"HostConfig": map[string]any{"NetworkMode": "bridge"}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}
}

func TestToDockerLeavesLabelsOpaque(t *testing.T) {
	in := map[string]any{"labels": map[string]any{"my-custom-key": "v"}}
	out := ToDocker(in).(map[string]any)

	labels, ok := out["Labels"].(map[string]any)
	if !ok {
		t.Fatalf("expected Labels key, got %#v", out)
	}
	if labels["my-custom-key"] != "v" {
		t.Fatalf("expected opaque label key untouched, got %#v", labels)
	}
}

func TestToDockerLeavesDottedKeysUntouched(t *testing.T) {
	in := map[string]any{"com.example.foo": "bar"}
	out := ToDocker(in).(map[string]any)

	if out["com.example.foo"] != "bar" {
		t.Fatalf("expected dotted key preserved verbatim, got %#v", out)
	}
}

func TestFromDockerAcronymRun(t *testing.T) {
	in := map[string]any{"IPAddress": "10.0.0.1"}
	out := FromDocker(in).(map[string]any)

	if out["ip-address"] != "10.0.0.1" {
		t.Fatalf("expected \"IPAddress\" -> \"ip-address\", got %#v", out)
	}
}

func TestFromDockerLeavesContainersOpaque(t *testing.T) {
	in := map[string]any{
		"Containers": map[string]any{
			"a1b2c3": map[string]any{"Name": "web"},
		},
	}
	out := FromDocker(in).(map[string]any)

	containers, ok := out["Containers"].(map[string]any)
	if !ok {
		t.Fatalf("expected Containers key preserved, got %#v", out)
	}
	entry, ok := containers["a1b2c3"].(map[string]any)
	if !ok {
		t.Fatalf("expected container entry preserved, got %#v", containers)
	}
	if entry["Name"] != "web" {
		t.Fatalf("expected opaque subtree left byte-for-byte, got %#v", entry)
	}
}

func TestRoundTrip(t *testing.T) {
	original := map[string]any{"host-config": map[string]any{"network-mode": "bridge"}}
	wire := ToDocker(original)
	back := FromDocker(wire)

	if !reflect.DeepEqual(original, back) {
		t.Fatalf("round trip mismatch: got %#v, want %#v", back, original)
	}
}
