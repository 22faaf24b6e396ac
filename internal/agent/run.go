package agent

import (
	"context"
	"fmt"
	"strings"
)

// RunPost runs one posting task built from the task templates. It satisfies
// the scheduler's PostRunner. Any run that does not end in TASK_COMPLETE is
// reported as an error so scheduled jobs count it as a failure.
func (l *Loop) RunPost(ctx context.Context, postType, platform, sector string) (string, error) {
	task := l.templates.Prompt(postType, sector)
	if platform != "" {
		task += " Target platform: " + platform + "."
	}

	result := l.Run(ctx, task)
	if !strings.HasPrefix(result, "TASK_COMPLETE") {
		return result, fmt.Errorf("run did not complete: %s", clip(result, 120))
	}
	return result, nil
}
