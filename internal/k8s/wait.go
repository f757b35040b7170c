package k8s

import (
	"context"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

// APIServerReady reports whether the API server answers requests.
// Probe errors are treated as not-ready.
func (c *Client) APIServerReady(ctx context.Context) (bool, error) {
	_, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return false, nil
	}
	return true, nil
}

// NodeReady reports whether every node in the cluster has a Ready condition
// with status True. On a one-node cluster this is the node provisioned by
// kubeadm init.
func (c *Client) NodeReady(ctx context.Context) (bool, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return false, nil
	}
	if len(nodes.Items) == 0 {
		return false, nil
	}

	for _, node := range nodes.Items {
		if !isNodeReady(&node) {
			return false, nil
		}
	}
	return true, nil
}

// DeploymentAvailable reports whether the named deployment has an Available
// condition with status True.
func (c *Client) DeploymentAvailable(ctx context.Context, namespace, name string) (bool, error) {
	deployment, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return false, nil
	}
	return isDeploymentAvailable(deployment), nil
}

// WaitForAPIServer polls until the API server responds or the timeout elapses.
// Used outside the stage pipeline (doctor, kubeconfig validation).
func (c *Client) WaitForAPIServer(ctx context.Context, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, 2*time.Second, timeout, true,
		func(ctx context.Context) (bool, error) {
			return c.APIServerReady(ctx)
		})
}

// RemoveControlPlaneTaints strips the control-plane scheduling taints from
// every node so workloads can run on the single node. Nodes without the
// taints are left untouched, so re-running is a no-op.
func (c *Client) RemoveControlPlaneTaints(ctx context.Context) error {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return err
	}

	for i := range nodes.Items {
		node := &nodes.Items[i]
		kept := node.Spec.Taints[:0]
		removed := false
		for _, taint := range node.Spec.Taints {
			if isControlPlaneTaint(taint) {
				removed = true
				continue
			}
			kept = append(kept, taint)
		}
		if !removed {
			continue
		}
		node.Spec.Taints = kept
		if _, err := c.clientset.CoreV1().Nodes().Update(ctx, node, metav1.UpdateOptions{}); err != nil {
			return err
		}
	}

	return nil
}

func isControlPlaneTaint(taint corev1.Taint) bool {
	return strings.HasPrefix(taint.Key, "node-role.kubernetes.io/control-plane") ||
		strings.HasPrefix(taint.Key, "node-role.kubernetes.io/master")
}

func isNodeReady(node *corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

func isDeploymentAvailable(deployment *appsv1.Deployment) bool {
	for _, condition := range deployment.Status.Conditions {
		if condition.Type == appsv1.DeploymentAvailable &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
