package config

// Default component versions. KubernetesVersion is a minor version because
// it selects the pkgs.k8s.io repository channel; cert-manager is pinned to a
// full release tag because its manifest URL embeds one.
const (
	DefaultKubernetesVersion  = "1.31"
	DefaultCertManagerVersion = "v1.16.2"
	DefaultPodNetworkCIDR     = "10.244.0.0/16"
	DefaultClusterName        = "kubeuno"
)

// Fixed manifest and script locations.
const (
	FlannelManifestURL = "https://github.com/flannel-io/flannel/releases/latest/download/kube-flannel.yml"

	IngressNginxManifestURL = "https://raw.githubusercontent.com/kubernetes/ingress-nginx/controller-v1.11.3/deploy/static/provider/baremetal/deploy.yaml"

	certManagerManifestURLFormat = "https://github.com/cert-manager/cert-manager/releases/download/%s/cert-manager.yaml"

	helmInstallScriptURL = "https://raw.githubusercontent.com/helm/helm/main/scripts/get-helm-3"
)

// Well-known host paths and ports.
const (
	// KubeAPIPort is the standard Kubernetes API server port.
	KubeAPIPort = 6443

	// AdminConfPath is written by kubeadm init and doubles as the
	// control-plane idempotency marker.
	AdminConfPath = "/etc/kubernetes/admin.conf"

	// ContainerdConfigPath holds the generated containerd configuration.
	ContainerdConfigPath = "/etc/containerd/config.toml"
)
